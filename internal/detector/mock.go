package detector

import (
	"gocv.io/x/gocv"
)

// MockBackend is a test implementation of the Backend interface.
// It allows tests to control the detection results.
type MockBackend struct {
	hands  []HandObservation
	err    error
	resets int
}

// NewMockBackend creates a new MockBackend instance.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// SetHands sets the hands that will be returned by DetectHands.
func (m *MockBackend) SetHands(hands []HandObservation) {
	m.hands = hands
}

// SetError sets the error that will be returned by DetectHands.
func (m *MockBackend) SetError(err error) {
	m.err = err
}

// DetectHands returns the pre-configured hands or error.
func (m *MockBackend) DetectHands(frame *gocv.Mat) ([]HandObservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// ResetState records the reset for test assertions.
func (m *MockBackend) ResetState() {
	m.resets++
}

// Resets returns how many times ResetState has been called.
func (m *MockBackend) Resets() int {
	return m.resets
}

// MaxHands reports the default hand limit.
func (m *MockBackend) MaxHands() int {
	return 2
}

// Close is a no-op for the mock backend.
func (m *MockBackend) Close() error {
	return nil
}

func jp(x, y, conf float64) JointPoint {
	return JointPoint{Location: Point{X: x, Y: y}, Confidence: conf}
}

// OpenPalmObservation returns a preset observation with all five fingers
// extended: every tip sits well above its reference joint.
func OpenPalmObservation() HandObservation {
	return HandObservation{
		Score: 0.95,
		Joints: map[Joint]JointPoint{
			Wrist:     jp(0.50, 0.20, 0.9),
			ThumbTip:  jp(0.68, 0.52, 0.9),
			ThumbIP:   jp(0.65, 0.40, 0.9),
			IndexTip:  jp(0.58, 0.65, 0.9),
			IndexPIP:  jp(0.57, 0.45, 0.9),
			MiddleTip: jp(0.50, 0.70, 0.9),
			MiddlePIP: jp(0.50, 0.48, 0.9),
			RingTip:   jp(0.43, 0.66, 0.9),
			RingPIP:   jp(0.44, 0.46, 0.9),
			LittleTip: jp(0.36, 0.58, 0.9),
			LittlePIP: jp(0.38, 0.42, 0.9),
		},
	}
}

// PeaceSignObservation returns a preset observation with only index and
// middle fingers extended and the thumb neutral.
func PeaceSignObservation() HandObservation {
	return HandObservation{
		Score: 0.93,
		Joints: map[Joint]JointPoint{
			Wrist:     jp(0.50, 0.20, 0.9),
			ThumbTip:  jp(0.62, 0.40, 0.9),
			ThumbIP:   jp(0.63, 0.39, 0.9),
			IndexTip:  jp(0.56, 0.66, 0.9),
			IndexPIP:  jp(0.56, 0.46, 0.9),
			MiddleTip: jp(0.49, 0.70, 0.9),
			MiddlePIP: jp(0.49, 0.48, 0.9),
			RingTip:   jp(0.44, 0.40, 0.9),
			RingPIP:   jp(0.44, 0.46, 0.9),
			LittleTip: jp(0.38, 0.38, 0.9),
			LittlePIP: jp(0.38, 0.42, 0.9),
		},
	}
}

// ThumbsUpObservation returns a preset observation with only the thumb
// extended upward.
func ThumbsUpObservation() HandObservation {
	return HandObservation{
		Score: 0.95,
		Joints: map[Joint]JointPoint{
			Wrist:     jp(0.50, 0.20, 0.9),
			ThumbTip:  jp(0.58, 0.55, 0.95),
			ThumbIP:   jp(0.57, 0.42, 0.9),
			IndexTip:  jp(0.50, 0.32, 0.9),
			IndexPIP:  jp(0.52, 0.36, 0.9),
			MiddleTip: jp(0.45, 0.34, 0.9),
			MiddlePIP: jp(0.47, 0.38, 0.9),
			RingTip:   jp(0.41, 0.32, 0.9),
			RingPIP:   jp(0.43, 0.36, 0.9),
			LittleTip: jp(0.37, 0.30, 0.9),
			LittlePIP: jp(0.39, 0.34, 0.9),
		},
	}
}

// ThumbsDownObservation returns a preset observation with only the thumb
// extended downward.
func ThumbsDownObservation() HandObservation {
	return HandObservation{
		Score: 0.94,
		Joints: map[Joint]JointPoint{
			Wrist:     jp(0.50, 0.60, 0.9),
			ThumbTip:  jp(0.58, 0.25, 0.95),
			ThumbIP:   jp(0.57, 0.38, 0.9),
			IndexTip:  jp(0.50, 0.48, 0.9),
			IndexPIP:  jp(0.52, 0.52, 0.9),
			MiddleTip: jp(0.45, 0.50, 0.9),
			MiddlePIP: jp(0.47, 0.54, 0.9),
			RingTip:   jp(0.41, 0.48, 0.9),
			RingPIP:   jp(0.43, 0.52, 0.9),
			LittleTip: jp(0.37, 0.46, 0.9),
			LittlePIP: jp(0.39, 0.50, 0.9),
		},
	}
}

// ClosedFistObservation returns a preset observation with no fingers
// extended and the thumb neutral.
func ClosedFistObservation() HandObservation {
	return HandObservation{
		Score: 0.92,
		Joints: map[Joint]JointPoint{
			Wrist:     jp(0.50, 0.20, 0.9),
			ThumbTip:  jp(0.58, 0.40, 0.9),
			ThumbIP:   jp(0.59, 0.41, 0.9),
			IndexTip:  jp(0.52, 0.38, 0.9),
			IndexPIP:  jp(0.53, 0.44, 0.9),
			MiddleTip: jp(0.48, 0.38, 0.9),
			MiddlePIP: jp(0.48, 0.46, 0.9),
			RingTip:   jp(0.44, 0.38, 0.9),
			RingPIP:   jp(0.44, 0.44, 0.9),
			LittleTip: jp(0.40, 0.36, 0.9),
			LittlePIP: jp(0.40, 0.42, 0.9),
		},
	}
}

// OneFingerObservation returns a preset observation with only the index
// finger extended.
func OneFingerObservation() HandObservation {
	obs := PeaceSignObservation()
	// Curl the middle finger below its PIP
	obs.Joints[MiddleTip] = jp(0.49, 0.42, 0.9)
	return obs
}

// PinkyUpObservation returns a preset observation with only the little
// finger extended and the thumb neutral.
func PinkyUpObservation() HandObservation {
	obs := ClosedFistObservation()
	obs.Joints[LittleTip] = jp(0.38, 0.62, 0.9)
	obs.Joints[LittlePIP] = jp(0.39, 0.44, 0.9)
	return obs
}
