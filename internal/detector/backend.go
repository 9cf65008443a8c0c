package detector

import "gocv.io/x/gocv"

// Backend defines the interface for hand pose-estimation implementations.
type Backend interface {
	// DetectHands analyzes a video frame and returns the observed hands.
	// Returns an empty slice if no hands are visible. A returned error means
	// the backend produced nothing usable this frame; callers treat it the
	// same as zero observations.
	DetectHands(frame *gocv.Mat) ([]HandObservation, error)

	// ResetState clears any internal tracking state, e.g. after the hand has
	// been lost or the pipeline was reset.
	ResetState()

	// MaxHands reports how many hands the backend can observe per frame.
	MaxHands() int

	// Close releases any resources held by the backend.
	Close() error
}

// Config holds configuration options for hand detection backends.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
