// Package testdata holds recorded landmark sessions for replay tests.
package testdata

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path"
	"strings"
)

//go:embed sessions/*.jsonl
var sessionsFS embed.FS

// Session names.
const (
	// PinchHold is a pinch held for exactly one cooldown window.
	PinchHold = "pinch_hold"
	// Media exercises play/pause, track changes, volume and missing frames
	// with the default bindings.
	Media = "media"
	// Scroll is a narrow-angle session meant for a scroll binding.
	Scroll = "scroll"
)

// OpenSession returns a reader over the named JSON Lines session.
func OpenSession(name string) (io.Reader, error) {
	data, err := sessionsFS.ReadFile(path.Join("sessions", name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", name, err)
	}
	return bytes.NewReader(data), nil
}

// Sessions lists the embedded session names.
func Sessions() ([]string, error) {
	entries, err := sessionsFS.ReadDir("sessions")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}
