package action

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// SwipePinchDetector detects swipe-left, swipe-right and pinch from a
// trailing window of wrist positions plus the per-frame thumb-index
// distance. A single shared cooldown gates both action kinds.
type SwipePinchDetector struct {
	mu       sync.Mutex
	cfg      Config
	onAction func(Gesture)

	samples    []timedPoint
	isPinched  bool
	lastAction time.Time
}

// NewSwipePinchDetector creates the swipe/pinch strategy detector. onAction
// is invoked outside the detector's lock.
func NewSwipePinchDetector(cfg Config, onAction func(Gesture)) *SwipePinchDetector {
	return &SwipePinchDetector{
		cfg:      cfg.sanitize(),
		onAction: onAction,
	}
}

// SetConfig replaces the detector parameters. Safe to call concurrently with
// Process; an in-flight frame sees either the old or the new values.
func (d *SwipePinchDetector) SetConfig(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg.sanitize()
}

// IsPinched reports the current edge-triggered pinch state.
func (d *SwipePinchDetector) IsPinched() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isPinched
}

// Process consumes one frame's sample and fires at most one action.
func (d *SwipePinchDetector) Process(s Sample, now time.Time) {
	d.mu.Lock()
	fired := d.processLocked(s, now)
	d.mu.Unlock()

	if fired != None && d.onAction != nil {
		d.onAction(fired)
	}
}

func (d *SwipePinchDetector) processLocked(s Sample, now time.Time) Gesture {
	d.samples = pruneTimedPoints(d.samples, now.Add(-d.cfg.SwipeWindow))

	// Pinch is edge-triggered with hysteresis: engage below PinchThreshold,
	// release only above the larger PinchRelease.
	if s.HaveThumb && s.HaveIndex {
		dist := detector.Distance(s.ThumbTip, s.IndexTip)
		switch {
		case !d.isPinched && dist < d.cfg.PinchThreshold:
			if d.cooledDown(now) {
				d.isPinched = true
				d.lastAction = now
				d.samples = d.samples[:0]
				return Pinch
			}
		case d.isPinched && dist > d.cfg.PinchRelease:
			d.isPinched = false
		}
	}

	// Swipes are only evaluated while not pinching.
	if d.isPinched {
		return None
	}

	if s.HaveWrist {
		d.samples = append(d.samples, timedPoint{p: s.Wrist, t: now})
	}

	if len(d.samples) < 2 || !d.cooledDown(now) {
		return None
	}

	oldest := d.samples[0].p
	newest := d.samples[len(d.samples)-1].p
	dx := newest.X - oldest.X
	dy := newest.Y - oldest.Y

	if abs(dx) >= d.cfg.SwipeDistance && abs(dy) <= d.cfg.SwipeVerticalTolerance {
		d.lastAction = now
		d.samples = d.samples[:0]
		if dx < 0 {
			return SwipeLeft
		}
		return SwipeRight
	}
	return None
}

// Reset clears the sample window, pinch edge state and cooldown.
func (d *SwipePinchDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.samples = nil
	d.isPinched = false
	d.lastAction = time.Time{}
}

func (d *SwipePinchDetector) cooledDown(now time.Time) bool {
	return d.lastAction.IsZero() || now.Sub(d.lastAction) >= d.cfg.Cooldown
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
