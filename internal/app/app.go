// Package app provides the main application logic for the Mudra gesture control system.
package app

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64
	Settings     store.Settings
}

// Snapshot is the observable pipeline state for UI consumers. It is produced
// once per frame by the processing goroutine and read from elsewhere.
type Snapshot struct {
	Enabled       bool            `json:"enabled"`
	Busy          bool            `json:"busy"`
	Current       string          `json:"current"`
	Confidence    float64         `json:"confidence"`
	StableFrames  int             `json:"stable_frames"`
	LastConfirmed string          `json:"last_confirmed"`
	DroppedFrames uint64          `json:"dropped_frames"`
	Strategy      action.Strategy `json:"strategy"`
}

// App orchestrates capture, hand detection, gesture classification and
// effector dispatch.
type App struct {
	config  Config
	camera  capture.Camera
	motion  *capture.MotionDetector
	backend detector.Backend
	engine  *gesture.Engine
	actions action.Detector

	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	settings store.Settings
	strategy action.Strategy

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}

	// gate is the capacity-1 admission gate: a frame arriving while another
	// is being classified is dropped, not queued.
	gate    chan struct{}
	dropped uint64
	busy    bool

	lastHandSeen time.Time
	handsLost    bool

	onGesture func(gesture.Gesture, float64)
	onAction  func(action.Gesture)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	settings := config.Settings
	if settings == (store.Settings{}) {
		settings = store.DefaultSettings()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5 * time.Second),
		settings:   settings,
		strategy:   action.Strategy(settings.ActionStrategy),
		gate:       make(chan struct{}, 1),
		enabled:    false,
	}
	a.gate <- struct{}{}

	a.engine = gesture.NewEngine(engineConfig(settings), a.handleGestureConfirmed)
	a.actions = action.New(a.strategy, actionConfig(settings), a.handleActionConfirmed)

	// Try MediaPipe first, fall back to the mock backend so the pipeline can
	// run (and be exercised in tests) without the Python service.
	if mp, err := detector.NewMediaPipeBackend(detector.DefaultConfig()); err == nil {
		a.backend = detector.NewChain(mp, detector.NewMockBackend())
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock backend", err)
		a.backend = detector.NewMockBackend()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetBackend switches the hand detection backend and resets all detector
// state, since tracking continuity is lost across backends.
func (a *App) SetBackend(b detector.Backend) {
	a.mu.Lock()
	a.backend = b
	a.mu.Unlock()
	a.Reset()
}

// Backend returns the hand detection backend.
func (a *App) Backend() detector.Backend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.backend
}

// Reset returns every detector to its initial idle condition.
func (a *App) Reset() {
	a.engine.Reset()
	a.actions.Reset()
	a.Backend().ResetState()

	a.mu.Lock()
	a.lastHandSeen = time.Time{}
	a.handsLost = false
	a.mu.Unlock()
}

// ApplySettings updates all runtime-tunable parameters. A strategy change
// replaces the action detector; everything else is applied in place, so an
// in-flight frame sees either the old or the new values.
func (a *App) ApplySettings(settings store.Settings) {
	a.engine.SetConfig(engineConfig(settings))

	a.mu.Lock()
	a.settings = settings
	newStrategy := action.Strategy(settings.ActionStrategy)
	var keep action.Detector
	if newStrategy != a.strategy {
		a.strategy = newStrategy
		a.actions = action.New(newStrategy, actionConfig(settings), a.handleActionConfirmed)
	} else {
		keep = a.actions
	}
	a.mu.Unlock()

	// SetConfig is called outside a.mu: the detector takes its own lock, and
	// its confirm callback acquires a.mu.
	if keep != nil {
		keep.SetConfig(actionConfig(settings))
	}
}

// Settings returns the active settings.
func (a *App) Settings() store.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// OnGestureConfirmed registers a callback invoked for every confirmed
// gesture, after effector dispatch.
func (a *App) OnGestureConfirmed(fn func(gesture.Gesture, float64)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// OnActionConfirmed registers a callback invoked for every confirmed action.
func (a *App) OnActionConfirmed(fn func(action.Gesture)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onAction = fn
}

// Engine returns the stability/debounce engine.
func (a *App) Engine() *gesture.Engine {
	return a.engine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// SetCamera replaces the camera, for tests that use playback frames.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Snapshot returns the current observable pipeline state.
func (a *App) Snapshot() Snapshot {
	state := a.engine.Snapshot()

	a.mu.RLock()
	defer a.mu.RUnlock()

	current := ""
	if state.Current != gesture.None {
		current = state.Current.String()
	}
	lastConfirmed := ""
	if state.LastConfirmed != gesture.None {
		lastConfirmed = state.LastConfirmed.String()
	}

	return Snapshot{
		Enabled:       a.enabled,
		Busy:          a.busy,
		Current:       current,
		Confidence:    state.Confidence,
		StableFrames:  state.StableFrames,
		LastConfirmed: lastConfirmed,
		DroppedFrames: a.dropped,
		Strategy:      a.strategy,
	}
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detection backend if set
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			log.Printf("Error closing backend: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// handleGestureConfirmed dispatches a confirmed gesture to the effector
// layer, logs it, and notifies subscribers.
func (a *App) handleGestureConfirmed(g gesture.Gesture, confidence float64) {
	binding, ok := gesture.Bindings[g]
	if !ok {
		return
	}

	log.Printf("Gesture confirmed: %s (confidence: %.3f)", g, confidence)

	if binding.VoiceToggle {
		a.executePlugin("voice", "toggle", g.String(), nil)
	} else {
		a.executeKeystroke(g.String(), binding.Key, binding.Modifiers)
	}

	a.recordEvent(store.EventKindGesture, g.String(), confidence)

	a.mu.RLock()
	callback := a.onGesture
	a.mu.RUnlock()
	if callback != nil {
		callback(g, confidence)
	}
}

// handleActionConfirmed dispatches a confirmed motion action.
func (a *App) handleActionConfirmed(g action.Gesture) {
	binding, ok := action.Bindings[g]
	if !ok {
		return
	}

	log.Printf("Action confirmed: %s", g)

	a.executeKeystroke(g.String(), binding.Key, binding.Modifiers)
	a.recordEvent(store.EventKindAction, g.String(), 0)

	a.mu.RLock()
	callback := a.onAction
	a.mu.RUnlock()
	if callback != nil {
		callback(g)
	}
}

func (a *App) executeKeystroke(gestureName, key string, modifiers []string) {
	params, err := json.Marshal(map[string]any{
		"key":       key,
		"modifiers": modifiers,
	})
	if err != nil {
		log.Printf("Failed to marshal keystroke params: %v", err)
		return
	}
	a.executePlugin("keyboard", "keystroke", gestureName, params)
}

func (a *App) executePlugin(pluginName, actionName, gestureName string, params json.RawMessage) {
	p, err := a.pluginMgr.Get(pluginName)
	if err != nil {
		log.Printf("Plugin %q not available: %v", pluginName, err)
		return
	}

	req := &plugin.Request{
		Action:  actionName,
		Gesture: gestureName,
		Params:  params,
	}

	resp, err := a.pluginExec.Execute(p, req)
	if err != nil {
		log.Printf("Plugin %q execution failed: %v", pluginName, err)
		return
	}
	if !resp.Success {
		log.Printf("Plugin %q reported failure: %s", pluginName, resp.Error)
	}
}

func (a *App) recordEvent(kind store.EventKind, name string, confidence float64) {
	if a.config.Store == nil {
		return
	}
	if _, err := a.config.Store.Events().Record(kind, name, confidence); err != nil {
		log.Printf("Failed to record event: %v", err)
	}
}

// engineConfig converts persisted settings into an engine configuration.
func engineConfig(s store.Settings) gesture.Config {
	return gesture.Config{
		Sensitivity:     s.Sensitivity,
		HoldDuration:    time.Duration(s.HoldMs) * time.Millisecond,
		Cooldown:        time.Duration(s.CooldownMs) * time.Millisecond,
		StaleTimeout:    time.Duration(s.StaleTimeoutMs) * time.Millisecond,
		StableFrameGate: s.StableFrameGate,
	}
}

// actionConfig converts persisted settings into an action detector
// configuration.
func actionConfig(s store.Settings) action.Config {
	return action.Config{
		SwipeDistance:          s.SwipeDistance,
		SwipeVerticalTolerance: s.SwipeVertTol,
		SwipeWindow:            time.Duration(s.SwipeWindowMs) * time.Millisecond,
		PinchThreshold:         s.PinchThreshold,
		PinchRelease:           s.PinchRelease,
		Cooldown:               time.Duration(s.ActionCooldownMs) * time.Millisecond,
		Window:                 time.Duration(s.ActionWindowMs) * time.Millisecond,
	}
}
