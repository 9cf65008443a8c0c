package gesture

import (
	"sync"
	"time"
)

// Config holds the runtime-tunable parameters of the stability and debounce
// engine. All values may be changed between frames via SetConfig.
type Config struct {
	// Sensitivity is the minimum classification confidence a candidate needs
	// to advance the stability counter.
	Sensitivity float64

	// HoldDuration is how long a gesture must be held continuously before it
	// is confirmed.
	HoldDuration time.Duration

	// Cooldown is the minimum time between successive confirmations.
	Cooldown time.Duration

	// StaleTimeout forces an idle reset when no valid hand observation has
	// been seen for this long.
	StaleTimeout time.Duration

	// StableFrameGate is the consecutive-frame count after which the caller
	// may invoke the detection backend at reduced frequency.
	StableFrameGate int
}

// DefaultEngineConfig returns the documented default engine parameters.
func DefaultEngineConfig() Config {
	return Config{
		Sensitivity:     0.7,
		HoldDuration:    300 * time.Millisecond,
		Cooldown:        500 * time.Millisecond,
		StaleTimeout:    400 * time.Millisecond,
		StableFrameGate: 3,
	}
}

// sanitize clamps nonsense values so bad settings degrade instead of panic.
func (c Config) sanitize() Config {
	if c.HoldDuration < 0 {
		c.HoldDuration = 0
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
	if c.StaleTimeout < 0 {
		c.StaleTimeout = 0
	}
	if c.StableFrameGate < 1 {
		c.StableFrameGate = 1
	}
	return c
}

// State is the observable per-frame output of the engine, safe to hand to a
// UI-facing consumer.
type State struct {
	Current       Gesture
	Confidence    float64
	StableFrames  int
	LastConfirmed Gesture
}

// Engine aggregates per-hand classification results across hands and time.
// It selects a winning candidate each frame, tracks short-term stability,
// and runs the hold/cooldown state machine that decides when a gesture is
// confirmed. At most one confirmation fires per Process call.
//
// All mutation happens inside Process on the frame-processing goroutine; the
// mutex only marshals snapshot reads from other goroutines.
type Engine struct {
	mu          sync.Mutex
	cfg         Config
	onConfirmed func(Gesture, float64)

	stable      Gesture
	stableCount int

	held      Gesture
	holdStart time.Time

	lastConfirmed Gesture
	lastTrigger   time.Time
	lastValid     time.Time

	current     Gesture
	currentConf float64
}

// NewEngine creates an Engine with the given configuration. onConfirmed is
// invoked, outside the engine's lock, for every confirmed gesture.
func NewEngine(cfg Config, onConfirmed func(Gesture, float64)) *Engine {
	return &Engine{
		cfg:         cfg.sanitize(),
		onConfirmed: onConfirmed,
	}
}

// SetConfig replaces the engine parameters. Safe to call between frames.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.sanitize()
}

// Process consumes one frame's classification results (one per detected
// hand) and advances the engine state. now is the frame's wall-clock
// timestamp.
func (e *Engine) Process(results []Result, now time.Time) {
	e.mu.Lock()

	// Stale timeout: no valid observation for too long forces an idle reset
	// before this frame is considered.
	if !e.lastValid.IsZero() && now.Sub(e.lastValid) > e.cfg.StaleTimeout {
		e.resetLocked()
	}

	for _, r := range results {
		if r.Valid {
			e.lastValid = now
			break
		}
	}

	selected, conf := e.selectCandidate(results)

	// Stability counter: advances only while the same gesture repeats with
	// enough confidence.
	switch {
	case selected == None:
		e.stable = None
		e.stableCount = 0
	case selected != e.stable:
		e.stable = selected
		e.stableCount = 1
	case conf >= e.cfg.Sensitivity:
		e.stableCount++
	}

	// Debounce state machine: Idle -> Holding -> Confirmed/Cooldown.
	var fired bool
	var firedConf float64
	switch {
	case selected == None:
		// Hard reset to Idle, not subject to cooldown.
		e.held = None
		e.holdStart = time.Time{}
	case selected != e.held:
		e.held = selected
		e.holdStart = now
	default:
		heldLong := now.Sub(e.holdStart) >= e.cfg.HoldDuration
		cooledDown := e.lastTrigger.IsZero() || now.Sub(e.lastTrigger) >= e.cfg.Cooldown
		if heldLong && cooledDown {
			e.lastConfirmed = selected
			e.lastTrigger = now
			// Restart the hold timer so a held gesture re-fires every
			// cooldown interval.
			e.holdStart = now
			fired = true
			firedConf = conf
		}
	}

	e.current = selected
	e.currentConf = conf

	callback := e.onConfirmed
	e.mu.Unlock()

	if fired && callback != nil {
		callback(selected, firedConf)
	}
}

// selectCandidate picks the winning gesture among this frame's per-hand
// results. Caller must hold e.mu.
//
// If two or more hands classify as five-fingers, the first two in discovery
// order are fused into double-open-hands with the lower of their confidences.
// Otherwise a candidate matching the currently-stable gesture wins (sticky),
// falling back to the highest-confidence candidate.
func (e *Engine) selectCandidate(results []Result) (Gesture, float64) {
	fiveFirst, fiveSecond := -1, -1
	for i, r := range results {
		if !r.Valid || r.Gesture != FiveFingers {
			continue
		}
		if fiveFirst < 0 {
			fiveFirst = i
		} else if fiveSecond < 0 {
			fiveSecond = i
			break
		}
	}
	if fiveSecond >= 0 {
		conf := min2(results[fiveFirst].Confidence, results[fiveSecond].Confidence)
		return DoubleOpenHands, conf
	}

	best := -1
	for i, r := range results {
		if !r.Valid || r.Gesture == None {
			continue
		}
		if e.stable != None && r.Gesture == e.stable {
			return r.Gesture, r.Confidence
		}
		if best < 0 || r.Confidence > results[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return None, 0
	}
	return results[best].Gesture, results[best].Confidence
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Current:       e.current,
		Confidence:    e.currentConf,
		StableFrames:  e.stableCount,
		LastConfirmed: e.lastConfirmed,
	}
}

// DetectionThrottled reports whether the current gesture has been stable long
// enough that the caller may skip backend invocations.
func (e *Engine) DetectionThrottled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stable != None && e.stableCount >= e.cfg.StableFrameGate
}

// Reset returns the engine to its initial idle condition. Calling it twice
// in a row is equivalent to calling it once.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.lastTrigger = time.Time{}
	e.lastConfirmed = None
}

// resetLocked clears per-frame tracking state. Cooldown and last-confirmed
// survive a stale reset; only an explicit Reset clears those too.
func (e *Engine) resetLocked() {
	e.stable = None
	e.stableCount = 0
	e.held = None
	e.holdStart = time.Time{}
	e.lastValid = time.Time{}
	e.current = None
	e.currentConf = 0
}
