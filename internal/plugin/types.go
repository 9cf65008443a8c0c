// Package plugin provides the effector layer: confirmed gestures are
// dispatched to small external executables discovered from a plugin
// directory, each described by a plugin.json manifest.
package plugin

import "encoding/json"

// Manifest describes an effector plugin: what it is called, which executable
// to run, and which actions it handles.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is the JSON document written to a plugin's stdin. Gesture carries
// the identifier of the confirmed gesture that triggered the dispatch.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response is the JSON document a plugin writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered effector with its manifest and resolved paths.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
