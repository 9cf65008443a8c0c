package action

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Fixed geometric thresholds for the motion-path strategy. These are part of
// the detection rules rather than the tunable configuration surface.
const (
	tapWindow   = 350 * time.Millisecond
	tapMinRise  = 0.20 // area rise relative to the sub-window's first sample
	tapMinFall  = 0.15 // area fall relative to the peak
	tapMaxDrift = 0.10 // index-tip horizontal drift bound

	waveMinAmplitude = 0.12
	waveDeadZone     = 0.01
	waveMinReversals = 2

	dragMinPoints = 3

	circleMinPoints = 10
	circleClosure   = 0.08
	circleMinLength = 0.5
	circleRoundness = 0.35 // max coefficient of variation of centroid distance
)

// MotionPathDetector detects air-tap, backhand-wave, pinch-drag-left and
// circle from trailing time-windowed histories of the index-tip path, the
// pinch-midpoint path, the bounding-box center path and the box-area series.
// Checks run in that fixed priority order; the first match wins, clears all
// histories and suppresses further detection for the display window.
type MotionPathDetector struct {
	mu       sync.Mutex
	cfg      Config
	onAction func(Gesture)

	indexPath  []timedPoint
	pinchPath  []timedPoint
	centerPath []timedPoint
	areas      []timedScalar

	lastAction  time.Time
	actionUntil time.Time
}

// NewMotionPathDetector creates the motion-path strategy detector. onAction
// is invoked outside the detector's lock.
func NewMotionPathDetector(cfg Config, onAction func(Gesture)) *MotionPathDetector {
	return &MotionPathDetector{
		cfg:      cfg.sanitize(),
		onAction: onAction,
	}
}

// SetConfig replaces the detector parameters. Safe to call concurrently with
// Process; an in-flight frame sees either the old or the new values.
func (d *MotionPathDetector) SetConfig(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg.sanitize()
}

// Process consumes one frame's sample and fires at most one action.
func (d *MotionPathDetector) Process(s Sample, now time.Time) {
	d.mu.Lock()
	fired := d.processLocked(s, now)
	d.mu.Unlock()

	if fired != None && d.onAction != nil {
		d.onAction(fired)
	}
}

func (d *MotionPathDetector) processLocked(s Sample, now time.Time) Gesture {
	cutoff := now.Add(-d.cfg.Window)
	d.indexPath = pruneTimedPoints(d.indexPath, cutoff)
	d.pinchPath = pruneTimedPoints(d.pinchPath, cutoff)
	d.centerPath = pruneTimedPoints(d.centerPath, cutoff)
	d.areas = pruneTimedScalars(d.areas, cutoff)

	if s.HaveIndex {
		d.indexPath = append(d.indexPath, timedPoint{p: s.IndexTip, t: now})
	}
	if s.HaveThumb && s.HaveIndex {
		// The pinch-midpoint path only records while the fingers are pinched.
		if detector.Distance(s.ThumbTip, s.IndexTip) < d.cfg.PinchThreshold {
			d.pinchPath = append(d.pinchPath, timedPoint{p: detector.Midpoint(s.ThumbTip, s.IndexTip), t: now})
		}
	}
	if s.HaveBox {
		d.centerPath = append(d.centerPath, timedPoint{p: s.Box.Center(), t: now})
		d.areas = append(d.areas, timedScalar{v: s.Box.Area(), t: now})
	}

	if !d.lastAction.IsZero() && now.Sub(d.lastAction) < d.cfg.Cooldown {
		return None
	}
	if now.Before(d.actionUntil) {
		return None
	}

	var matched Gesture
	switch {
	case d.detectAirTap(now):
		matched = AirTap
	case d.detectWave():
		matched = BackhandWave
	case d.detectPinchDragLeft():
		matched = PinchDragLeft
	case d.detectCircle():
		matched = Circle
	default:
		return None
	}

	d.clearHistories()
	d.lastAction = now
	d.actionUntil = now.Add(d.cfg.Window)
	return matched
}

// Reset clears all histories, cooldown and suppression state.
func (d *MotionPathDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearHistories()
	d.lastAction = time.Time{}
	d.actionUntil = time.Time{}
}

func (d *MotionPathDetector) clearHistories() {
	d.indexPath = nil
	d.pinchPath = nil
	d.centerPath = nil
	d.areas = nil
}

// detectAirTap looks for a rise-then-fall in hand area within a short
// sub-window: the area must grow by tapMinRise over the sub-window's first
// sample, then drop by tapMinFall from its own peak, with the peak strictly
// interior. Lateral index-tip motion over the same sub-window disqualifies
// the tap, and at least one index-tip sample is required so the drift bound
// is never vacuously satisfied.
func (d *MotionPathDetector) detectAirTap(now time.Time) bool {
	cutoff := now.Add(-tapWindow)

	var areas []timedScalar
	for _, a := range d.areas {
		if !a.t.Before(cutoff) {
			areas = append(areas, a)
		}
	}
	if len(areas) < 3 {
		return false
	}

	first := areas[0].v
	if first <= 0 {
		return false
	}

	peakIdx := 0
	for i, a := range areas {
		if a.v > areas[peakIdx].v {
			peakIdx = i
		}
	}
	if peakIdx == 0 || peakIdx == len(areas)-1 {
		return false
	}

	peak := areas[peakIdx].v
	last := areas[len(areas)-1].v
	if (peak-first)/first < tapMinRise {
		return false
	}
	if (peak-last)/peak < tapMinFall {
		return false
	}

	// Bound horizontal index-tip drift over the same sub-window.
	minX, maxX := math.Inf(1), math.Inf(-1)
	indexSamples := 0
	for _, p := range d.indexPath {
		if p.t.Before(cutoff) {
			continue
		}
		indexSamples++
		if p.p.X < minX {
			minX = p.p.X
		}
		if p.p.X > maxX {
			maxX = p.p.X
		}
	}
	if indexSamples == 0 {
		return false
	}
	return maxX-minX <= tapMaxDrift
}

// detectWave looks for a back-and-forth horizontal motion of the box center:
// enough total amplitude, and at least waveMinReversals sign changes between
// consecutive horizontal deltas after dead-zone filtering.
func (d *MotionPathDetector) detectWave() bool {
	if len(d.centerPath) < 3 {
		return false
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range d.centerPath {
		if p.p.X < minX {
			minX = p.p.X
		}
		if p.p.X > maxX {
			maxX = p.p.X
		}
	}
	if maxX-minX < waveMinAmplitude {
		return false
	}

	reversals := 0
	prevSign := 0
	for i := 1; i < len(d.centerPath); i++ {
		dx := d.centerPath[i].p.X - d.centerPath[i-1].p.X
		if abs(dx) < waveDeadZone {
			continue
		}
		sign := 1
		if dx < 0 {
			sign = -1
		}
		if prevSign != 0 && sign != prevSign {
			reversals++
		}
		prevSign = sign
	}

	return reversals >= waveMinReversals
}

// detectPinchDragLeft looks for a net leftward displacement of the
// pinch-midpoint path with bounded vertical drift.
func (d *MotionPathDetector) detectPinchDragLeft() bool {
	if len(d.pinchPath) < dragMinPoints {
		return false
	}

	first := d.pinchPath[0].p
	last := d.pinchPath[len(d.pinchPath)-1].p

	dx := last.X - first.X
	dy := abs(last.Y - first.Y)

	return dx <= -d.cfg.SwipeDistance && dy <= d.cfg.SwipeVerticalTolerance
}

// detectCircle approximates "traced a roughly circular loop": the index path
// must close on itself, traverse enough total length, and keep the per-point
// distance from the centroid tight around the mean.
func (d *MotionPathDetector) detectCircle() bool {
	n := len(d.indexPath)
	if n < circleMinPoints {
		return false
	}

	first := d.indexPath[0].p
	last := d.indexPath[n-1].p
	if detector.Distance(first, last) > circleClosure {
		return false
	}

	var length float64
	var cx, cy float64
	for i, p := range d.indexPath {
		cx += p.p.X
		cy += p.p.Y
		if i > 0 {
			length += detector.Distance(d.indexPath[i-1].p, p.p)
		}
	}
	if length < circleMinLength {
		return false
	}

	centroid := detector.Point{X: cx / float64(n), Y: cy / float64(n)}

	var sum, sumSq float64
	for _, p := range d.indexPath {
		r := detector.Distance(p.p, centroid)
		sum += r
		sumSq += r * r
	}
	meanR := sum / float64(n)
	if meanR <= 0 {
		return false
	}
	variance := sumSq/float64(n) - meanR*meanR
	if variance < 0 {
		variance = 0
	}

	return math.Sqrt(variance)/meanR <= circleRoundness
}
