// Package main implements the voice effector plugin for macOS. It starts,
// stops, and toggles dictation via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request is the JSON document the executor writes to stdin.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response is the JSON document written back on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// handlers maps action names to the AppleScript routine that performs them.
var handlers = map[string]func() error{
	"toggle": toggleDictation,
	"start":  startDictation,
	"stop":   stopDictation,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fail("failed to decode request: %v", err))
		return
	}
	respond(handle(req))
}

func handle(req Request) Response {
	handler, ok := handlers[req.Action]
	if !ok {
		return fail("unknown action: %s", req.Action)
	}
	if err := handler(); err != nil {
		return fail("action %s failed: %v", req.Action, err)
	}
	return Response{Success: true}
}

// toggleDictation presses the dictation key. Double-tap Fn is not
// scriptable, so the configured keyboard shortcut is used instead.
func toggleDictation() error {
	return runAppleScript(`tell application "System Events" to key code 63`)
}

// startDictation selects Start Dictation from the Edit menu of the frontmost
// application, if present.
func startDictation() error {
	return runAppleScript(`tell application "System Events"
		tell (first process whose frontmost is true)
			click menu item "Start Dictation" of menu "Edit" of menu bar 1
		end tell
	end tell`)
}

// stopDictation sends escape to end an active dictation session.
func stopDictation() error {
	return runAppleScript(`tell application "System Events" to key code 53`)
}

func runAppleScript(script string) error {
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}

func fail(format string, args ...any) Response {
	return Response{Error: fmt.Sprintf(format, args...)}
}

func respond(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
