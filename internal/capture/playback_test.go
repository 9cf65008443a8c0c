package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestPlaybackCamera_Sequence(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewPlaybackCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() frame %d error = %v", i, err)
		}
		f.Close()
	}

	// Exhausted without looping
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameRead) {
		t.Errorf("ReadFrame() past the end error = %v, want ErrFrameRead", err)
	}
}

func TestPlaybackCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewPlaybackCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestPlaybackCamera_NotOpen(t *testing.T) {
	cam := NewPlaybackCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestPlaybackCamera_Rewind(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewPlaybackCamera([]*gocv.Mat{&frame}, false)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f.Close()

	if _, err := cam.ReadFrame(); err == nil {
		t.Fatal("expected exhaustion before rewind")
	}

	cam.Rewind()
	f, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Rewind() error = %v", err)
	}
	f.Close()
}
