// Package main implements the keyboard effector plugin for macOS. It turns
// keystroke and shortcut actions into AppleScript sent through osascript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
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

// keystrokeParams carries the key and modifier list for both actions.
type keystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// modifiers translates binding modifier names to AppleScript "using" clauses.
var modifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// keyCodes maps named keys to macOS virtual key codes. AppleScript's
// keystroke types the literal word for these, so they must go through
// key code instead.
var keyCodes = map[string]int{
	"return": 36,
	"enter":  36,
	"tab":    48,
	"space":  49,
	"escape": 53,
	"esc":    53,
	"left":   123,
	"right":  124,
	"down":   125,
	"up":     126,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fail("failed to decode request: %v", err))
		return
	}
	respond(handle(req))
}

// handle dispatches one request and produces its response.
func handle(req Request) Response {
	switch req.Action {
	case "keystroke", "shortcut":
		var p keystrokeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return fail("failed to parse params: %v", err)
		}
		if p.Key == "" {
			return fail("key is required")
		}
		if err := press(p.Key, p.Modifiers); err != nil {
			return fail("action %s failed: %v", req.Action, err)
		}
		return Response{Success: true}
	default:
		return fail("unknown action: %s", req.Action)
	}
}

// press sends one key event, with modifiers held, to the frontmost
// application.
func press(key string, mods []string) error {
	stroke := fmt.Sprintf(`keystroke "%s"`, key)
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		stroke = fmt.Sprintf("key code %d", code)
	}

	var held []string
	for _, mod := range mods {
		if clause, ok := modifiers[strings.ToLower(mod)]; ok {
			held = append(held, clause)
		}
	}
	if len(held) > 0 {
		stroke += fmt.Sprintf(" using {%s}", strings.Join(held, ", "))
	}

	script := `tell application "System Events" to ` + stroke
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
