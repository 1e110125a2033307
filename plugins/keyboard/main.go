// Package main provides the keyboard plugin for macOS.
// It sends raw key codes and keystrokes via AppleScript; the gesture
// engine uses it for page up and page down.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Value   *float64        `json:"value,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeyCodeParams selects a virtual key code, e.g. 116 page up, 121 page down.
type KeyCodeParams struct {
	KeyCode   *int     `json:"key_code"`
	Modifiers []string `json:"modifiers"`
}

// KeystrokeParams defines parameters for keystroke actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	var script string
	var err error
	switch req.Action {
	case "key-code":
		script, err = keyCodeScript(req.Params)
	case "keystroke":
		script, err = keystrokeScript(req.Params)
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err == nil {
		err = runAppleScript(script)
	}
	respond(err)
}

func keyCodeScript(params json.RawMessage) (string, error) {
	var p KeyCodeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", fmt.Errorf("failed to parse params: %w", err)
	}
	if p.KeyCode == nil {
		return "", errors.New("key_code is required")
	}
	return tell(fmt.Sprintf("key code %d", *p.KeyCode), p.Modifiers), nil
}

func keystrokeScript(params json.RawMessage) (string, error) {
	var p KeystrokeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", fmt.Errorf("failed to parse params: %w", err)
	}
	if p.Key == "" {
		return "", errors.New("key is required")
	}
	return tell(fmt.Sprintf("keystroke %q", p.Key), p.Modifiers), nil
}

// tell wraps a System Events command, appending any recognised modifiers.
func tell(command string, modifiers []string) string {
	var apple []string
	for _, mod := range modifiers {
		if m, ok := modifierMap[strings.ToLower(mod)]; ok {
			apple = append(apple, m)
		}
	}
	if len(apple) > 0 {
		command += " using {" + strings.Join(apple, ", ") + "}"
	}
	return `tell application "System Events" to ` + command
}

// respond writes the response for err, or a success response if err is nil.
func respond(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
