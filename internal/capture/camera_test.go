package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Defaults(t *testing.T) {
	cam := NewCamera(0)

	if cam.IsOpen() {
		t.Error("camera must not be open before Open()")
	}
	if got := cam.FPS(); got != 5 {
		t.Errorf("FPS() = %d, want the idle default 5", got)
	}
}

func TestNewCameraWithConfig(t *testing.T) {
	cfg := DefaultCameraConfig(1)
	cfg.FPS = 15

	cam := NewCameraWithConfig(cfg)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d, want 15 from config", got)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	cam.SetFPS(15)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d, want 15", got)
	}

	// Zero and negative rates are ignored
	cam.SetFPS(0)
	cam.SetFPS(-5)
	if got := cam.FPS(); got != 15 {
		t.Errorf("FPS() = %d, want 15 after invalid rates", got)
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on an unopened camera error = %v, want nil", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() = false after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() error = %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned an empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() = true after Close()")
	}
}
