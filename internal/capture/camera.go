// Package capture provides the camera frame source and frame-differencing
// motion detection for the gesture pipeline, built on GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Sentinel errors for frame acquisition.
var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrFrameRead is returned when the device fails to deliver a frame.
	ErrFrameRead = errors.New("failed to read frame from camera")
	// ErrFrameEmpty is returned when the device delivers an empty frame.
	ErrFrameEmpty = errors.New("captured frame is empty")
)

// CameraConfig holds the device parameters for a webcam frame source.
type CameraConfig struct {
	DeviceID int
	Width    int
	Height   int
	// FPS is the initial capture rate. The pipeline raises and lowers it at
	// runtime as it moves between idle and active mode.
	FPS int
}

// DefaultCameraConfig returns the standard capture parameters: 640x480 at the
// idle frame rate. The low resolution keeps per-frame detection cheap.
func DefaultCameraConfig(deviceID int) CameraConfig {
	return CameraConfig{
		DeviceID: deviceID,
		Width:    640,
		Height:   480,
		FPS:      5,
	}
}

// Camera is the frame source contract the pipeline runs against. ReadFrame
// hands ownership of the returned Mat to the caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam captures frames from a physical device via GoCV.
type webcam struct {
	cfg     CameraConfig
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera for the given device ID with the default
// capture parameters.
func NewCamera(deviceID int) Camera {
	return NewCameraWithConfig(DefaultCameraConfig(deviceID))
}

// NewCameraWithConfig creates a Camera with explicit capture parameters.
func NewCameraWithConfig(cfg CameraConfig) Camera {
	return &webcam{
		cfg: cfg,
		fps: cfg.FPS,
	}
}

// Open acquires the device and applies the configured resolution and frame
// rate. Opening an already-open camera is a no-op.
func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.cfg.DeviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close releases the device. Closing a camera that was never opened is a
// no-op.
func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the device. The caller owns the
// returned Mat and must close it.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, ErrFrameRead
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrFrameEmpty
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Values less than or equal to zero are
// ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate setting.
func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen reports whether the device is currently acquired.
func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
