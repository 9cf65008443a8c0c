// Package detector provides hand observation types and pose-estimation
// backends for the Mudra gesture control system.
package detector

import "math"

// Joint identifies a tracked hand landmark. The set is closed: backends must
// map whatever landmark scheme they use onto these eleven joints.
type Joint int

const (
	Wrist Joint = iota
	ThumbTip
	ThumbIP
	IndexTip
	IndexPIP
	MiddleTip
	MiddlePIP
	RingTip
	RingPIP
	LittleTip
	LittlePIP

	NumJoints
)

var jointNames = [NumJoints]string{
	Wrist:     "wrist",
	ThumbTip:  "thumbTip",
	ThumbIP:   "thumbIP",
	IndexTip:  "indexTip",
	IndexPIP:  "indexPIP",
	MiddleTip: "middleTip",
	MiddlePIP: "middlePIP",
	RingTip:   "ringTip",
	RingPIP:   "ringPIP",
	LittleTip: "littleTip",
	LittlePIP: "littlePIP",
}

// String returns the wire name of the joint as used by backend protocols.
func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return "unknown"
	}
	return jointNames[j]
}

// JointByName maps a wire name back to a Joint.
// Returns NumJoints and false for unknown names.
func JointByName(name string) (Joint, bool) {
	for j, n := range jointNames {
		if n == name {
			return Joint(j), true
		}
	}
	return NumJoints, false
}

// Point is a 2D location in normalized image coordinates. The origin is the
// bottom-left corner and Y increases upward, so "above" means a larger Y.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// JointPoint is a single joint observation: a normalized location plus the
// backend's confidence in it. Immutable once produced for a frame.
type JointPoint struct {
	Location   Point   `json:"location"`
	Confidence float64 `json:"confidence"`
}

// HandObservation is one hand's joint set for a single frame. The joint map
// may be partial: backends omit joints they could not locate. Observations
// are owned by the frame that produced them and must not be retained.
type HandObservation struct {
	Joints map[Joint]JointPoint `json:"joints"`
	Score  float64              `json:"score"`
}

// Joint returns the observation for j, if present.
func (h *HandObservation) Joint(j Joint) (JointPoint, bool) {
	p, ok := h.Joints[j]
	return p, ok
}

// Box is an axis-aligned bounding box in normalized coordinates.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Center returns the center point of the box.
func (b Box) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Area returns the normalized area of the box.
func (b Box) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// BoundingBox computes the bounding box over all joints whose confidence is
// at least minConfidence. The filter is inclusive (>=) for every caller.
// Returns false when no joint passes the filter.
func (h *HandObservation) BoundingBox(minConfidence float64) (Box, bool) {
	box := Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false

	for _, jp := range h.Joints {
		if jp.Confidence < minConfidence {
			continue
		}
		found = true
		if jp.Location.X < box.MinX {
			box.MinX = jp.Location.X
		}
		if jp.Location.X > box.MaxX {
			box.MaxX = jp.Location.X
		}
		if jp.Location.Y < box.MinY {
			box.MinY = jp.Location.Y
		}
		if jp.Location.Y > box.MaxY {
			box.MaxY = jp.Location.Y
		}
	}

	if !found {
		return Box{}, false
	}
	return box, true
}
