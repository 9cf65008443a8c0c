package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection, then hands each active-mode frame to one classification
// pass behind the admission gate.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection, skipping alternate frames once a gesture is stable
// 4. Classify each hand and feed the stability/debounce engine
// 5. Feed the primary hand's summaries to the motion action detector
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	// Counts frames while the stable-gesture throttle is engaged, so the
	// backend runs on alternate frames only.
	throttleTick := 0

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			if !activeMode {
				frame.Close()
				continue
			}

			// Once a gesture has been stable for the configured gate, the
			// backend only runs on alternate frames. The engine itself still
			// advances on every frame it is given input for.
			if a.engine.DetectionThrottled() {
				throttleTick++
				if throttleTick%2 == 1 {
					frame.Close()
					continue
				}
			} else {
				throttleTick = 0
			}

			a.processFrame(frame, time.Now())
			frame.Close()
		}
	}
}

// processFrame runs one classification pass behind the capacity-1 admission
// gate. A frame arriving while another is in flight is dropped, not queued;
// classification does not need to keep up with the camera, and queued frames
// would skew the hold-duration timing. Returns false when the frame was shed.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) bool {
	select {
	case <-a.gate:
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return false
	}

	a.mu.Lock()
	a.busy = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
		a.gate <- struct{}{}
	}()

	hands, err := a.Backend().DetectHands(frame)
	if err != nil {
		// Backend failure is "no hands this frame", never fatal.
		log.Printf("Hand detection failed: %v", err)
		hands = nil
	}

	a.ProcessHands(hands, now)
	return true
}

// ProcessHands runs classification and the stateful detectors over one
// frame's observations. Exported so tests can drive the pipeline without a
// camera or backend.
func (a *App) ProcessHands(hands []detector.HandObservation, now time.Time) {
	if maxHands := a.Backend().MaxHands(); maxHands > 0 && len(hands) > maxHands {
		hands = hands[:maxHands]
	}

	a.mu.Lock()
	sensitivity := a.settings.Sensitivity
	staleTimeout := time.Duration(a.settings.StaleTimeoutMs) * time.Millisecond
	actions := a.actions

	if len(hands) > 0 {
		a.lastHandSeen = now
		a.handsLost = false
	} else if !a.handsLost && !a.lastHandSeen.IsZero() && now.Sub(a.lastHandSeen) > staleTimeout {
		// The engine handles its own staleness; the action detector and the
		// backend tracking state are reset by their caller.
		a.handsLost = true
		a.mu.Unlock()
		actions.Reset()
		a.Backend().ResetState()
		a.mu.Lock()
	}
	a.mu.Unlock()

	results := make([]gesture.Result, 0, len(hands))
	for i := range hands {
		results = append(results, gesture.Classify(hands[i], sensitivity))
	}

	a.engine.Process(results, now)

	if len(hands) > 0 {
		actions.Process(actionSample(&hands[0], sensitivity), now)
	}
}

// actionSample extracts the scalar and point summaries the motion detector
// needs from the primary hand. The full observation is never retained.
func actionSample(h *detector.HandObservation, minConfidence float64) action.Sample {
	var s action.Sample

	if jp, ok := h.Joint(detector.Wrist); ok {
		s.Wrist = jp.Location
		s.HaveWrist = true
	}
	if jp, ok := h.Joint(detector.ThumbTip); ok {
		s.ThumbTip = jp.Location
		s.HaveThumb = true
	}
	if jp, ok := h.Joint(detector.IndexTip); ok {
		s.IndexTip = jp.Location
		s.HaveIndex = true
	}
	if box, ok := h.BoundingBox(minConfidence); ok {
		s.Box = box
		s.HaveBox = true
	}

	return s
}
