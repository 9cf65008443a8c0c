package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python service may sit unused before it is
// stopped. The next DetectHands call restarts it.
const idleShutdown = 30 * time.Second

// MediaPipeBackend implements Backend using a Python MediaPipe subprocess.
// Frames go out as length-prefixed JPEG, observations come back as one JSON
// line per frame with the eleven named joints already converted to
// bottom-left-origin normalized coordinates.
type MediaPipeBackend struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeBackend creates a new MediaPipe backend. The Python process is
// started lazily on first detection, but the service script must already be
// installed.
func NewMediaPipeBackend(config Config) (*MediaPipeBackend, error) {
	if serviceScript() == "" {
		return nil, fmt.Errorf("mediapipe_service.py not found")
	}
	return &MediaPipeBackend{config: config}, nil
}

// DetectHands analyzes a frame and returns the observed hands.
func (d *MediaPipeBackend) DetectHands(frame *gocv.Mat) ([]HandObservation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	if err := d.writeFrame(frame); err != nil {
		return nil, err
	}

	hands, err := d.readHands()
	if err != nil {
		return nil, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()
	return hands, nil
}

// writeFrame sends one frame as a 4-byte big-endian length followed by the
// JPEG bytes.
func (d *MediaPipeBackend) writeFrame(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := d.stdin.Write(header); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// readHands reads one JSON response line and converts it.
func (d *MediaPipeBackend) readHands() ([]HandObservation, error) {
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]HandObservation, 0, len(response.Hands))
	for _, h := range response.Hands {
		hands = append(hands, h.toObservation())
	}
	return hands, nil
}

// ResetState discards subprocess tracking state by shutting the service down;
// the next DetectHands call starts it fresh.
func (d *MediaPipeBackend) ResetState() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shutdown()
}

// MaxHands reports the configured hand limit.
func (d *MediaPipeBackend) MaxHands() int {
	return d.config.MaxHands
}

// Close shuts down the Python process.
func (d *MediaPipeBackend) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeBackend) ensureStarted() error {
	if d.started {
		return nil
	}

	script := serviceScript()
	if script == "" {
		return fmt.Errorf("mediapipe_service.py not found")
	}

	python := venvPython()
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, script)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()
	return nil
}

func (d *MediaPipeBackend) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func (d *MediaPipeBackend) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

// serviceScript locates mediapipe_service.py relative to the working
// directory, the executable, or the user's data directory.
func serviceScript() string {
	execDir := executableDir()
	return firstExisting(
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/mediapipe_service.py"),
	)
}

// venvPython locates a virtual-environment interpreter to run the service
// with. Empty means fall back to python3 on PATH.
func venvPython() string {
	execDir := executableDir()
	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	)
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(execPath)
}

// firstExisting returns the first path that exists, made absolute when
// possible.
func firstExisting(paths ...string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service. Joints are
// keyed by wire name; unknown names are dropped.
type jsonHand struct {
	Joints map[string]jsonJoint `json:"joints"`
	Score  float64              `json:"score"`
}

type jsonJoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

func (h jsonHand) toObservation() HandObservation {
	obs := HandObservation{
		Joints: make(map[Joint]JointPoint, len(h.Joints)),
		Score:  h.Score,
	}
	for name, p := range h.Joints {
		j, ok := JointByName(name)
		if !ok {
			continue
		}
		obs.Joints[j] = JointPoint{
			Location:   Point{X: p.X, Y: p.Y},
			Confidence: p.Confidence,
		}
	}
	return obs
}
