package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestClassify_DecisionTable(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandObservation
		want Gesture
	}{
		{"thumbs up", detector.ThumbsUpObservation(), ThumbsUp},
		{"thumbs down", detector.ThumbsDownObservation(), ThumbsDown},
		{"pinky up", detector.PinkyUpObservation(), PinkyUp},
		{"five fingers", detector.OpenPalmObservation(), FiveFingers},
		{"closed fist", detector.ClosedFistObservation(), ClosedFist},
		{"one finger", detector.OneFingerObservation(), OneFinger},
		{"peace sign", detector.PeaceSignObservation(), PeaceSign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.hand, 0.5)
			if !got.Valid {
				t.Fatalf("Classify() not valid, want %v", tt.want)
			}
			if got.Gesture != tt.want {
				t.Errorf("Classify() = %v, want %v", got.Gesture, tt.want)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Errorf("confidence out of range: %f", got.Confidence)
			}
		})
	}
}

func TestClassify_FourFingers(t *testing.T) {
	// Open palm with the thumb pulled back to neutral drops to four fingers
	hand := detector.OpenPalmObservation()
	thumbIP := hand.Joints[detector.ThumbIP]
	hand.Joints[detector.ThumbTip] = detector.JointPoint{
		Location:   detector.Point{X: thumbIP.Location.X + 0.01, Y: thumbIP.Location.Y + 0.01},
		Confidence: 0.9,
	}

	got := Classify(hand, 0.5)
	if got.Gesture != FourFingers {
		t.Errorf("Classify() = %v, want FourFingers", got.Gesture)
	}
}

func TestClassify_ThreeFingers(t *testing.T) {
	// Open palm with thumb neutral and little finger curled
	hand := detector.OpenPalmObservation()
	thumbIP := hand.Joints[detector.ThumbIP]
	hand.Joints[detector.ThumbTip] = detector.JointPoint{
		Location:   thumbIP.Location,
		Confidence: 0.9,
	}
	littlePIP := hand.Joints[detector.LittlePIP]
	hand.Joints[detector.LittleTip] = detector.JointPoint{
		Location:   detector.Point{X: littlePIP.Location.X, Y: littlePIP.Location.Y - 0.05},
		Confidence: 0.9,
	}

	got := Classify(hand, 0.5)
	if got.Gesture != ThreeFingers {
		t.Errorf("Classify() = %v, want ThreeFingers", got.Gesture)
	}
}

func TestClassify_NoRuleMatches(t *testing.T) {
	// Middle finger alone matches no rule and must come back as none
	hand := detector.ClosedFistObservation()
	middlePIP := hand.Joints[detector.MiddlePIP]
	hand.Joints[detector.MiddleTip] = detector.JointPoint{
		Location:   detector.Point{X: middlePIP.Location.X, Y: middlePIP.Location.Y + 0.20},
		Confidence: 0.9,
	}

	got := Classify(hand, 0.5)
	if got.Valid {
		t.Errorf("Classify() valid = true, want false")
	}
	if got.Gesture != None {
		t.Errorf("Classify() = %v, want None", got.Gesture)
	}
}

func TestClassify_LowConfidenceFailsSoft(t *testing.T) {
	hand := detector.PeaceSignObservation()
	indexTip := hand.Joints[detector.IndexTip]
	indexTip.Confidence = 0.2
	hand.Joints[detector.IndexTip] = indexTip

	got := Classify(hand, 0.5)
	if got.Valid {
		t.Error("expected invalid result when index tip confidence is low")
	}
	if got.Gesture != None || got.Confidence != 0 {
		t.Errorf("Classify() = (%v, %f), want (None, 0)", got.Gesture, got.Confidence)
	}
}

func TestClassify_MissingJointFailsSoft(t *testing.T) {
	hand := detector.OpenPalmObservation()
	delete(hand.Joints, detector.RingPIP)

	got := Classify(hand, 0.5)
	if got.Valid {
		t.Error("expected invalid result when a required joint is missing")
	}
}

func TestClassify_PeaceSignConfidence(t *testing.T) {
	// Peace-sign confidence is the mean of the two extended tip confidences
	hand := detector.PeaceSignObservation()
	indexTip := hand.Joints[detector.IndexTip]
	indexTip.Confidence = 0.8
	hand.Joints[detector.IndexTip] = indexTip
	middleTip := hand.Joints[detector.MiddleTip]
	middleTip.Confidence = 0.6
	hand.Joints[detector.MiddleTip] = middleTip

	got := Classify(hand, 0.5)
	if got.Gesture != PeaceSign {
		t.Fatalf("Classify() = %v, want PeaceSign", got.Gesture)
	}
	if got.Confidence < 0.699 || got.Confidence > 0.701 {
		t.Errorf("confidence = %f, want 0.7", got.Confidence)
	}
}

func TestClassify_ClosedFistFixedConfidence(t *testing.T) {
	got := Classify(detector.ClosedFistObservation(), 0.5)
	if got.Gesture != ClosedFist {
		t.Fatalf("Classify() = %v, want ClosedFist", got.Gesture)
	}
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %f, want fixed 0.8", got.Confidence)
	}
}

func TestClassify_ThumbsUpShadowsFist(t *testing.T) {
	// Thumbs-up satisfies the fist finger pattern too; the earlier rule wins
	got := Classify(detector.ThumbsUpObservation(), 0.5)
	if got.Gesture != ThumbsUp {
		t.Errorf("Classify() = %v, want ThumbsUp", got.Gesture)
	}
	// Thumb-only gestures take the lower of the two thumb joint confidences
	if got.Confidence != 0.9 {
		t.Errorf("confidence = %f, want min of thumb joints (0.9)", got.Confidence)
	}
}
