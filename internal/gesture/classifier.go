package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
)

// Finger-extension margins in normalized units. A finger counts as extended
// when its tip is above its PIP joint by more than the margin; the thumb is
// measured against its IP joint with a wider margin and can also extend
// downward.
const (
	fingerMargin = 0.03
	thumbMargin  = 0.05
)

// fistConfidence is reported for closed-fist, where no single joint
// confidence is representative of "all fingers absent".
const fistConfidence = 0.8

// Result is the outcome of classifying one hand for one frame.
type Result struct {
	Gesture    Gesture
	Confidence float64
	Valid      bool
}

// thumbState is the tri-state extension flag for the thumb.
type thumbState int

const (
	thumbNeutral thumbState = iota
	thumbUp
	thumbDown
)

// Classify decides which gesture one hand's joint set represents.
//
// It fails soft (Valid=false, None) when the thumb, index or middle tip is
// missing or below minConfidence, or when any joint the extension tests need
// is absent. The rules are evaluated in a fixed priority order; earlier rules
// shadow later ones, so the order is part of the contract.
func Classify(hand detector.HandObservation, minConfidence float64) Result {
	invalid := Result{Gesture: None}

	thumbTip, ok := hand.Joint(detector.ThumbTip)
	if !ok || thumbTip.Confidence < minConfidence {
		return invalid
	}
	indexTip, ok := hand.Joint(detector.IndexTip)
	if !ok || indexTip.Confidence < minConfidence {
		return invalid
	}
	middleTip, ok := hand.Joint(detector.MiddleTip)
	if !ok || middleTip.Confidence < minConfidence {
		return invalid
	}

	thumbIP, ok := hand.Joint(detector.ThumbIP)
	if !ok {
		return invalid
	}
	indexPIP, ok := hand.Joint(detector.IndexPIP)
	if !ok {
		return invalid
	}
	middlePIP, ok := hand.Joint(detector.MiddlePIP)
	if !ok {
		return invalid
	}
	ringTip, ok := hand.Joint(detector.RingTip)
	if !ok {
		return invalid
	}
	ringPIP, ok := hand.Joint(detector.RingPIP)
	if !ok {
		return invalid
	}
	littleTip, ok := hand.Joint(detector.LittleTip)
	if !ok {
		return invalid
	}
	littlePIP, ok := hand.Joint(detector.LittlePIP)
	if !ok {
		return invalid
	}

	thumb := thumbNeutral
	switch {
	case thumbTip.Location.Y > thumbIP.Location.Y+thumbMargin:
		thumb = thumbUp
	case thumbTip.Location.Y < thumbIP.Location.Y-thumbMargin:
		thumb = thumbDown
	}

	index := indexTip.Location.Y > indexPIP.Location.Y+fingerMargin
	middle := middleTip.Location.Y > middlePIP.Location.Y+fingerMargin
	ring := ringTip.Location.Y > ringPIP.Location.Y+fingerMargin
	little := littleTip.Location.Y > littlePIP.Location.Y+fingerMargin

	switch {
	case thumb == thumbUp && !index && !middle && !ring && !little:
		return Result{ThumbsUp, min2(thumbTip.Confidence, thumbIP.Confidence), true}

	case thumb == thumbDown && !index && !middle && !ring && !little:
		return Result{ThumbsDown, min2(thumbTip.Confidence, thumbIP.Confidence), true}

	case little && thumb == thumbNeutral && !index && !middle && !ring:
		return Result{PinkyUp, mean(littleTip.Confidence, littlePIP.Confidence), true}

	case thumb == thumbUp && index && middle && ring && little:
		return Result{FiveFingers, mean(thumbTip.Confidence, indexTip.Confidence,
			middleTip.Confidence, ringTip.Confidence, littleTip.Confidence), true}

	case thumb != thumbUp && index && middle && ring && little:
		return Result{FourFingers, mean(indexTip.Confidence, middleTip.Confidence,
			ringTip.Confidence, littleTip.Confidence), true}

	case thumb == thumbNeutral && !index && !middle && !ring && !little:
		return Result{ClosedFist, fistConfidence, true}

	case index && !middle && !ring && !little:
		return Result{OneFinger, indexTip.Confidence, true}

	case index && middle && !ring && !little:
		return Result{PeaceSign, mean(indexTip.Confidence, middleTip.Confidence), true}

	case index && middle && ring && !little:
		return Result{ThreeFingers, mean(indexTip.Confidence, middleTip.Confidence,
			ringTip.Confidence), true}
	}

	return Result{Gesture: None}
}

func mean(vals ...float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
