package tray

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/mudra/internal/app"
)

func TestTitles(t *testing.T) {
	tests := []struct {
		name  string
		state app.FlagState
		last  string
		want  menuTitles
	}{
		{
			name:  "stopped",
			state: app.FlagState{},
			want:  menuTitles{running: "Start", pause: "Pause", preview: "Show Preview", last: "Last: none"},
		},
		{
			name:  "running paused with preview",
			state: app.FlagState{Running: true, Paused: true, PreviewVisible: true},
			last:  "VOLUME UP",
			want:  menuTitles{running: "Stop", pause: "Resume", preview: "Hide Preview", last: "Last: VOLUME UP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titles(tt.state, tt.last); got != tt.want {
				t.Errorf("titles() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandleRunning(t *testing.T) {
	a := app.New(app.Config{})
	tr := New(a, zaptest.NewLogger(t).Sugar())

	// Without a source Start fails and the tray only logs it.
	tr.handleRunning()
	if a.Running() {
		t.Error("expected App to stay stopped")
	}
}
