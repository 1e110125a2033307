// Package main provides the media and volume plugin for macOS.
// Each action presses one media key through System Events.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
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

// volumeStep is the change applied per volume command, in percent.
const volumeStep = 6

// actions maps action names to the AppleScript that performs them.
var actions = map[string]string{
	"media-play-pause": keyCode(100),
	"media-next":       keyCode(101),
	"media-prev":       keyCode(98),
	"volume-up":        fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + %d)`, volumeStep),
	"volume-down":      fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) - %d)`, volumeStep),
	"volume-mute":      `set volume output muted (not (output muted of (get volume settings)))`,
}

func keyCode(code int) string {
	return fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code)
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	script, ok := actions[req.Action]
	if !ok {
		respond(fmt.Errorf("unknown action: %s", req.Action))
		return
	}

	if err := runAppleScript(script); err != nil {
		respond(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	respond(nil)
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
