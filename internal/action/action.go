// Package action provides motion ("action") gesture detection over a
// time-ordered stream of tracked hand points and bounding boxes.
package action

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Gesture identifies a motion gesture. The vocabulary is closed.
type Gesture int

const (
	None Gesture = iota
	SwipeLeft
	SwipeRight
	Pinch
	AirTap
	BackhandWave
	PinchDragLeft
	Circle
)

var gestureNames = map[Gesture]string{
	None:          "none",
	SwipeLeft:     "swipe-left",
	SwipeRight:    "swipe-right",
	Pinch:         "pinch",
	AirTap:        "air-tap",
	BackhandWave:  "backhand-wave",
	PinchDragLeft: "pinch-drag-left",
	Circle:        "circle",
}

// String returns the stable identifier for the action gesture.
func (g Gesture) String() string {
	if name, ok := gestureNames[g]; ok {
		return name
	}
	return "unknown"
}

// Binding is the fixed effector action mapped to a motion gesture.
type Binding struct {
	Label     string
	Key       string
	Modifiers []string
}

// Bindings maps every non-none action gesture to its effector action.
var Bindings = map[Gesture]Binding{
	SwipeLeft:     {Label: "Swipe Left", Key: "left", Modifiers: []string{"command"}},
	SwipeRight:    {Label: "Swipe Right", Key: "right", Modifiers: []string{"command"}},
	Pinch:         {Label: "Pinch", Key: "space"},
	AirTap:        {Label: "Air Tap", Key: "return"},
	BackhandWave:  {Label: "Backhand Wave", Key: "escape"},
	PinchDragLeft: {Label: "Pinch Drag Left", Key: "tab", Modifiers: []string{"command"}},
	Circle:        {Label: "Circle", Key: "r", Modifiers: []string{"command"}},
}

// Label returns the human-readable label, or the identifier when unbound.
func (g Gesture) Label() string {
	if b, ok := Bindings[g]; ok {
		return b.Label
	}
	return g.String()
}

// Sample is the per-frame input to a motion detector: the scalar and point
// summaries extracted from the primary hand's observation. Absent joints
// leave the corresponding Have flag false.
type Sample struct {
	Wrist     detector.Point
	ThumbTip  detector.Point
	IndexTip  detector.Point
	Box       detector.Box
	HaveWrist bool
	HaveThumb bool
	HaveIndex bool
	HaveBox   bool
}

// Detector is the per-frame contract shared by both detection strategies.
// Process consumes one frame's sample; at most one action fires per call.
// Reset clears all histories and edge state, e.g. when the hand is lost or
// the backend is switched.
type Detector interface {
	Process(s Sample, now time.Time)
	Reset()
	SetConfig(cfg Config)
}

// Strategy selects which detection strategy a pipeline runs.
type Strategy string

const (
	// StrategySwipePinch detects swipe-left/right and pinch from the wrist
	// trajectory and thumb-index distance.
	StrategySwipePinch Strategy = "swipe-pinch"
	// StrategyMotionPath detects air-tap, backhand-wave, pinch-drag-left and
	// circle from trailing point and area histories.
	StrategyMotionPath Strategy = "motion-path"
)

// Config holds the runtime-tunable parameters shared by both strategies.
type Config struct {
	// SwipeDistance is the minimum net horizontal displacement for a swipe,
	// also used as the pinch-drag distance threshold.
	SwipeDistance float64

	// SwipeVerticalTolerance bounds vertical drift during a swipe or drag.
	SwipeVerticalTolerance float64

	// SwipeWindow is the trailing wrist-sample window for swipe detection.
	SwipeWindow time.Duration

	// PinchThreshold is the thumb-index distance below which a pinch engages.
	PinchThreshold float64

	// PinchRelease is the larger distance above which a pinch disengages;
	// the gap between the two thresholds provides hysteresis.
	PinchRelease float64

	// Cooldown is the minimum time between fired actions.
	Cooldown time.Duration

	// Window is the trailing history window for the motion-path strategy,
	// and the display/suppression window after an action fires.
	Window time.Duration
}

// DefaultConfig returns the documented default parameters for the strategy.
func DefaultConfig(strategy Strategy) Config {
	cfg := Config{
		SwipeDistance:          0.22,
		SwipeVerticalTolerance: 0.10,
		SwipeWindow:            250 * time.Millisecond,
		PinchThreshold:         0.06,
		PinchRelease:           0.09,
		Cooldown:               500 * time.Millisecond,
		Window:                 600 * time.Millisecond,
	}
	if strategy == StrategyMotionPath {
		cfg.Cooldown = 600 * time.Millisecond
	}
	return cfg
}

// sanitize clamps nonsense values so bad settings degrade instead of panic.
func (c Config) sanitize() Config {
	if c.SwipeWindow < 0 {
		c.SwipeWindow = 0
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
	if c.Window < 0 {
		c.Window = 0
	}
	if c.PinchRelease < c.PinchThreshold {
		c.PinchRelease = c.PinchThreshold
	}
	return c
}

// New creates a detector for the given strategy. Unknown strategies fall
// back to the swipe/pinch detector.
func New(strategy Strategy, cfg Config, onAction func(Gesture)) Detector {
	if strategy == StrategyMotionPath {
		return NewMotionPathDetector(cfg, onAction)
	}
	return NewSwipePinchDetector(cfg, onAction)
}

// timedPoint is a point sample with its frame timestamp.
type timedPoint struct {
	p detector.Point
	t time.Time
}

// timedScalar is a scalar sample with its frame timestamp.
type timedScalar struct {
	v float64
	t time.Time
}

// pruneTimedPoints drops samples older than cutoff, preserving order.
func pruneTimedPoints(samples []timedPoint, cutoff time.Time) []timedPoint {
	keep := samples[:0]
	for _, s := range samples {
		if !s.t.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	return keep
}

// pruneTimedScalars drops samples older than cutoff, preserving order.
func pruneTimedScalars(samples []timedScalar, cutoff time.Time) []timedScalar {
	keep := samples[:0]
	for _, s := range samples {
		if !s.t.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	return keep
}
