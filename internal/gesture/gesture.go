// Package gesture provides the static gesture vocabulary, the rule-based
// classifier, and the stability/debounce engine for the Mudra system.
package gesture

// Gesture identifies a static hand pose. The vocabulary is closed; every
// gesture carries a fixed binding in Bindings.
type Gesture int

const (
	None Gesture = iota
	OneFinger
	PeaceSign
	ThreeFingers
	FourFingers
	FiveFingers
	ClosedFist
	ThumbsUp
	ThumbsDown
	PinkyUp
	DoubleOpenHands
)

var gestureNames = map[Gesture]string{
	None:            "none",
	OneFinger:       "one-finger",
	PeaceSign:       "peace-sign",
	ThreeFingers:    "three-fingers",
	FourFingers:     "four-fingers",
	FiveFingers:     "five-fingers",
	ClosedFist:      "closed-fist",
	ThumbsUp:        "thumbs-up",
	ThumbsDown:      "thumbs-down",
	PinkyUp:         "pinky-up",
	DoubleOpenHands: "double-open-hands",
}

// String returns the stable identifier for the gesture.
func (g Gesture) String() string {
	if name, ok := gestureNames[g]; ok {
		return name
	}
	return "unknown"
}

// Binding is the fixed action mapped to a gesture: a keystroke (key plus
// optional modifiers) or a voice-recording toggle, and a human label.
type Binding struct {
	Label       string
	Key         string
	Modifiers   []string
	VoiceToggle bool
}

// Bindings maps every non-none gesture to its action. This is configuration
// data carried alongside the vocabulary, not part of the classifier contract.
var Bindings = map[Gesture]Binding{
	OneFinger:       {Label: "One Finger", Key: "right"},
	PeaceSign:       {Label: "Peace Sign", Key: "left"},
	ThreeFingers:    {Label: "Three Fingers", Key: "up"},
	FourFingers:     {Label: "Four Fingers", Key: "down"},
	FiveFingers:     {Label: "Open Hand", Key: "space"},
	ClosedFist:      {Label: "Closed Fist", Key: "escape"},
	ThumbsUp:        {Label: "Thumbs Up", Key: "return"},
	ThumbsDown:      {Label: "Thumbs Down", Key: "delete"},
	PinkyUp:         {Label: "Pinky Up", Key: "tab"},
	DoubleOpenHands: {Label: "Double Open Hands", VoiceToggle: true},
}

// Label returns the human-readable label for the gesture, or its identifier
// when no binding exists.
func (g Gesture) Label() string {
	if b, ok := Bindings[g]; ok {
		return b.Label
	}
	return g.String()
}
