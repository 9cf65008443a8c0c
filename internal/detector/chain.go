package detector

import (
	"errors"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoBackend is returned when a chain has no backends left to try.
var ErrNoBackend = errors.New("no detection backend available")

// FailureTrip is the number of consecutive DetectHands failures after which
// a chain abandons the active backend and advances to the next one.
const FailureTrip = 30

// Chain is a Backend that wraps an ordered list of backends with graceful
// fallback. The first backend is active; once it fails FailureTrip times in
// a row it is closed and the chain advances permanently to the next entry.
// Individual failures are returned to the caller, which treats them as "no
// hands this frame".
type Chain struct {
	backends []Backend
	active   int
	failures int
	mu       sync.Mutex
}

// NewChain creates a Chain over the given backends, in priority order.
func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

// DetectHands delegates to the active backend, advancing on repeated failure.
func (c *Chain) DetectHands(frame *gocv.Mat) ([]HandObservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active >= len(c.backends) {
		return nil, ErrNoBackend
	}

	hands, err := c.backends[c.active].DetectHands(frame)
	if err != nil {
		c.failures++
		if c.failures >= FailureTrip {
			c.advance()
		}
		return nil, err
	}

	c.failures = 0
	return hands, nil
}

// advance closes the active backend and moves to the next one.
// Caller must hold c.mu.
func (c *Chain) advance() {
	old := c.backends[c.active]
	if err := old.Close(); err != nil {
		log.Printf("Error closing backend during fallback: %v", err)
	}

	c.active++
	c.failures = 0

	if c.active < len(c.backends) {
		c.backends[c.active].ResetState()
		log.Printf("Detection backend fell back to entry %d of %d", c.active+1, len(c.backends))
	} else {
		log.Println("All detection backends exhausted")
	}
}

// ResetState resets the active backend's tracking state.
func (c *Chain) ResetState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active < len(c.backends) {
		c.backends[c.active].ResetState()
	}
}

// MaxHands reports the active backend's hand limit, or zero when exhausted.
func (c *Chain) MaxHands() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active >= len(c.backends) {
		return 0
	}
	return c.backends[c.active].MaxHands()
}

// Close closes every backend that has not already been closed by fallback.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for i := c.active; i < len(c.backends); i++ {
		if err := c.backends[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.active = len(c.backends)
	return firstErr
}
