package action

import (
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

func wristSample(x, y float64) Sample {
	return Sample{Wrist: detector.Point{X: x, Y: y}, HaveWrist: true}
}

func pinchSample(dist float64) Sample {
	return Sample{
		ThumbTip:  detector.Point{X: 0.5, Y: 0.5},
		IndexTip:  detector.Point{X: 0.5 + dist, Y: 0.5},
		HaveThumb: true,
		HaveIndex: true,
	}
}

func TestSwipePinch_SwipeLeft(t *testing.T) {
	var fired []Gesture
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(g Gesture) {
		fired = append(fired, g)
	})

	// Wrist travels from x=0.8 to x=0.5 over 150ms, well inside the window
	now := time.Now()
	for _, x := range []float64{0.80, 0.74, 0.68, 0.62, 0.56, 0.50} {
		d.Process(wristSample(x, 0.5), now)
		now = now.Add(30 * time.Millisecond)
	}

	if len(fired) != 1 {
		t.Fatalf("got %d actions, want 1", len(fired))
	}
	if fired[0] != SwipeLeft {
		t.Errorf("fired %v, want SwipeLeft", fired[0])
	}

	// The sample window is cleared on fire, so the held end position does not
	// re-trigger against stale samples.
	d.Process(wristSample(0.50, 0.5), now)
	if len(fired) != 1 {
		t.Errorf("got %d actions after fire, want still 1", len(fired))
	}
}

func TestSwipePinch_SwipeRight(t *testing.T) {
	var fired []Gesture
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(g Gesture) {
		fired = append(fired, g)
	})

	now := time.Now()
	for _, x := range []float64{0.30, 0.38, 0.46, 0.54, 0.62} {
		d.Process(wristSample(x, 0.5), now)
		now = now.Add(30 * time.Millisecond)
	}

	if len(fired) != 1 || fired[0] != SwipeRight {
		t.Fatalf("fired %v, want exactly one SwipeRight", fired)
	}
}

func TestSwipePinch_VerticalDriftRejectsSwipe(t *testing.T) {
	count := 0
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(Gesture) { count++ })

	// Enough horizontal travel, but the hand also drops too far
	now := time.Now()
	for i, x := range []float64{0.80, 0.72, 0.64, 0.56, 0.48} {
		d.Process(wristSample(x, 0.5-float64(i)*0.04), now)
		now = now.Add(30 * time.Millisecond)
	}

	if count != 0 {
		t.Errorf("got %d actions, want 0 for a diagonal motion", count)
	}
}

func TestSwipePinch_SlowDriftPrunedByWindow(t *testing.T) {
	count := 0
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(Gesture) { count++ })

	// The hand crosses the full swipe distance, but so slowly that the
	// trailing window never contains enough displacement.
	now := time.Now()
	for x := 0.80; x >= 0.40; x -= 0.04 {
		d.Process(wristSample(x, 0.5), now)
		now = now.Add(200 * time.Millisecond)
	}

	if count != 0 {
		t.Errorf("got %d actions, want 0 for slow drift", count)
	}
}

func TestSwipePinch_PinchHysteresis(t *testing.T) {
	var fired []Gesture
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(g Gesture) {
		fired = append(fired, g)
	})

	now := time.Now()

	// Engage below the pinch threshold
	d.Process(pinchSample(0.05), now)
	if len(fired) != 1 || fired[0] != Pinch {
		t.Fatalf("fired %v, want one Pinch", fired)
	}
	if !d.IsPinched() {
		t.Fatal("expected pinched state after engage")
	}

	// Between threshold and release: stays pinched, nothing new fires
	now = now.Add(30 * time.Millisecond)
	d.Process(pinchSample(0.07), now)
	if !d.IsPinched() {
		t.Error("distance in the hysteresis band must not release the pinch")
	}
	if len(fired) != 1 {
		t.Errorf("got %d actions, want still 1", len(fired))
	}

	// Above the release threshold: disengages
	now = now.Add(30 * time.Millisecond)
	d.Process(pinchSample(0.10), now)
	if d.IsPinched() {
		t.Error("expected release above the release threshold")
	}

	// Re-pinch after the cooldown fires again
	now = now.Add(600 * time.Millisecond)
	d.Process(pinchSample(0.05), now)
	if len(fired) != 2 {
		t.Errorf("got %d actions, want 2 after cooldown", len(fired))
	}
}

func TestSwipePinch_CooldownSharedAcrossActions(t *testing.T) {
	var fired []Gesture
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(g Gesture) {
		fired = append(fired, g)
	})

	now := time.Now()
	d.Process(pinchSample(0.05), now)
	now = now.Add(30 * time.Millisecond)
	d.Process(pinchSample(0.20), now) // release

	// A fast swipe right after the pinch is still inside the cooldown
	for _, x := range []float64{0.80, 0.70, 0.60, 0.50} {
		now = now.Add(30 * time.Millisecond)
		d.Process(wristSample(x, 0.5), now)
	}

	if len(fired) != 1 {
		t.Errorf("got %v, want only the pinch inside the shared cooldown", fired)
	}
}

func TestSwipePinch_NoSwipeWhilePinched(t *testing.T) {
	var fired []Gesture
	cfg := DefaultConfig(StrategySwipePinch)
	cfg.Cooldown = 0
	d := NewSwipePinchDetector(cfg, func(g Gesture) {
		fired = append(fired, g)
	})

	now := time.Now()
	for _, x := range []float64{0.80, 0.70, 0.60, 0.50} {
		s := pinchSample(0.05)
		s.Wrist = detector.Point{X: x, Y: 0.5}
		s.HaveWrist = true
		d.Process(s, now)
		now = now.Add(30 * time.Millisecond)
	}

	if len(fired) != 1 || fired[0] != Pinch {
		t.Errorf("fired %v, want only the pinch while fingers stay closed", fired)
	}
}

func TestSwipePinch_Reset(t *testing.T) {
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), nil)

	now := time.Now()
	d.Process(pinchSample(0.05), now)
	if !d.IsPinched() {
		t.Fatal("expected pinched state")
	}

	d.Reset()
	if d.IsPinched() {
		t.Error("Reset must clear the pinch edge state")
	}
	if len(d.samples) != 0 {
		t.Error("Reset must clear the sample window")
	}
	if !d.lastAction.IsZero() {
		t.Error("Reset must clear the cooldown")
	}
}

func TestSwipePinch_ConcurrentSetConfig(t *testing.T) {
	d := NewSwipePinchDetector(DefaultConfig(StrategySwipePinch), func(Gesture) {})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cfg := DefaultConfig(StrategySwipePinch)
		for i := 0; i < 200; i++ {
			cfg.SwipeDistance = 0.20 + float64(i%5)*0.01
			d.SetConfig(cfg)
		}
	}()

	// Frames keep arriving while the settings are being rewritten
	now := time.Now()
	for i := 0; i < 200; i++ {
		d.Process(wristSample(0.5+float64(i%10)*0.01, 0.5), now)
		now = now.Add(5 * time.Millisecond)
	}
	wg.Wait()
}
