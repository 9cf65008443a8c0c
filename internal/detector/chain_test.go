package detector

import (
	"errors"
	"testing"
)

func TestChain_FallsBackAfterRepeatedFailures(t *testing.T) {
	primary := NewMockBackend()
	primary.SetError(errors.New("subprocess died"))
	secondary := NewMockBackend()
	secondary.SetHands([]HandObservation{OpenPalmObservation()})

	chain := NewChain(primary, secondary)

	// Every failure is surfaced to the caller until the trip count is hit
	for i := 0; i < FailureTrip; i++ {
		if _, err := chain.DetectHands(nil); err == nil {
			t.Fatalf("failure %d: expected error from primary backend", i)
		}
	}

	// The chain has advanced; the secondary must have been reset on takeover
	hands, err := chain.DetectHands(nil)
	if err != nil {
		t.Fatalf("DetectHands() after fallback error = %v", err)
	}
	if len(hands) != 1 {
		t.Errorf("got %d hands from secondary, want 1", len(hands))
	}
	if secondary.Resets() != 1 {
		t.Errorf("secondary resets = %d, want 1 on takeover", secondary.Resets())
	}
}

func TestChain_SuccessResetsFailureCount(t *testing.T) {
	flaky := NewMockBackend()
	secondary := NewMockBackend()
	chain := NewChain(flaky, secondary)

	// Alternate failures and successes: the consecutive count never trips
	for i := 0; i < FailureTrip*2; i++ {
		if i%2 == 0 {
			flaky.SetError(errors.New("transient"))
		} else {
			flaky.SetError(nil)
		}
		chain.DetectHands(nil)
	}

	if secondary.Resets() != 0 {
		t.Error("chain advanced despite intermittent successes")
	}
}

func TestChain_ExhaustedReturnsErrNoBackend(t *testing.T) {
	failing := NewMockBackend()
	failing.SetError(errors.New("broken"))
	chain := NewChain(failing)

	for i := 0; i < FailureTrip; i++ {
		chain.DetectHands(nil)
	}

	if _, err := chain.DetectHands(nil); !errors.Is(err, ErrNoBackend) {
		t.Errorf("DetectHands() error = %v, want ErrNoBackend", err)
	}
	if chain.MaxHands() != 0 {
		t.Errorf("MaxHands() = %d, want 0 when exhausted", chain.MaxHands())
	}
}

func TestChain_ResetStateTargetsActiveBackend(t *testing.T) {
	first := NewMockBackend()
	second := NewMockBackend()
	chain := NewChain(first, second)

	chain.ResetState()

	if first.Resets() != 1 {
		t.Errorf("first backend resets = %d, want 1", first.Resets())
	}
	if second.Resets() != 0 {
		t.Errorf("second backend resets = %d, want 0", second.Resets())
	}
}

func TestChain_MaxHands(t *testing.T) {
	chain := NewChain(NewMockBackend())
	if chain.MaxHands() != 2 {
		t.Errorf("MaxHands() = %d, want the active backend's limit", chain.MaxHands())
	}
}
