package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ayusman/mudra/internal/action"
)

const recordScript = `cat > "$(dirname "$0")/last.json"
echo '{"success":true}'
`

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()
	writePlugin(t, dir, SystemControl, recordScript, "media-play-pause", "media-prev", "media-next", "volume-up", "volume-down")
	writePlugin(t, dir, Keyboard, recordScript, "key-code")

	logger := zaptest.NewLogger(t).Sugar()
	manager := NewManager(dir, logger)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	return NewDispatcher(manager, NewExecutor(5*time.Second), logger), dir
}

func lastRequest(t *testing.T, dir, plugin string) Request {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, plugin, "last.json"))
	if err != nil {
		t.Fatalf("plugin %s was not run: %v", plugin, err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("bad request: %v", err)
	}
	return req
}

func TestDispatcher_Execute(t *testing.T) {
	d, dir := newTestDispatcher(t)

	tests := []struct {
		cmd        action.Command
		plugin     string
		wantAction string
	}{
		{cmd: action.Command{Kind: action.KindPlayPause}, plugin: SystemControl, wantAction: "media-play-pause"},
		{cmd: action.Command{Kind: action.KindPrevious}, plugin: SystemControl, wantAction: "media-prev"},
		{cmd: action.Command{Kind: action.KindNext}, plugin: SystemControl, wantAction: "media-next"},
		{cmd: action.WithParam(action.KindVolumeUp, 92), plugin: SystemControl, wantAction: "volume-up"},
		{cmd: action.WithParam(action.KindVolumeDown, 4), plugin: SystemControl, wantAction: "volume-down"},
		{cmd: action.WithParam(action.KindScrollDown, 12.5), plugin: Keyboard, wantAction: "key-code"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmd.Kind), func(t *testing.T) {
			if err := d.Execute(context.Background(), tt.cmd); err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}

			req := lastRequest(t, dir, tt.plugin)
			if req.Action != tt.wantAction {
				t.Errorf("expected action %q, got %q", tt.wantAction, req.Action)
			}
			if req.Command != string(tt.cmd.Kind) {
				t.Errorf("expected command %q, got %q", tt.cmd.Kind, req.Command)
			}
			if (req.Value == nil) != (tt.cmd.Param == nil) {
				t.Errorf("param mismatch: sent %v, plugin saw %v", tt.cmd.Param, req.Value)
			}
		})
	}

	req := lastRequest(t, dir, Keyboard)
	if string(req.Params) != `{"key_code":121}` {
		t.Errorf("expected page down key code, got %s", req.Params)
	}
}

func TestDispatcher_Noop(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir(), nil), NewExecutor(0), nil)

	if err := d.Execute(context.Background(), action.NoopCommand()); err != nil {
		t.Errorf("noop should succeed without plugins, got %v", err)
	}
}

func TestDispatcher_Errors(t *testing.T) {
	t.Run("missing plugin", func(t *testing.T) {
		d := NewDispatcher(NewManager(t.TempDir(), nil), NewExecutor(0), nil)

		err := d.Execute(context.Background(), action.Command{Kind: action.KindNext})
		if !errors.Is(err, ErrPluginNotFound) {
			t.Errorf("expected ErrPluginNotFound, got %v", err)
		}
	})

	t.Run("no route", func(t *testing.T) {
		d, _ := newTestDispatcher(t)

		err := d.Execute(context.Background(), action.Command{Kind: action.Kind("rewind")})
		if !errors.Is(err, ErrNoRoute) {
			t.Errorf("expected ErrNoRoute, got %v", err)
		}
	})

	t.Run("unsupported action", func(t *testing.T) {
		d, _ := newTestDispatcher(t)
		d.routes[action.KindNext] = Route{Plugin: Keyboard, Action: "media-next"}

		if err := d.Execute(context.Background(), action.Command{Kind: action.KindNext}); err == nil {
			t.Error("expected error for action the plugin does not declare")
		}
	})

	t.Run("plugin reports failure", func(t *testing.T) {
		dir := t.TempDir()
		writePlugin(t, dir, SystemControl, `echo '{"success":false,"error":"no media player"}'`+"\n", "media-next")
		manager := NewManager(dir, nil)
		manager.Discover()
		d := NewDispatcher(manager, NewExecutor(0), nil)

		if err := d.Execute(context.Background(), action.Command{Kind: action.KindNext}); err == nil {
			t.Error("expected error for unsuccessful response")
		}
	})
}

func TestDefaultRoutes_CoverCommands(t *testing.T) {
	routes := DefaultRoutes()
	for _, k := range []action.Kind{
		action.KindPlayPause, action.KindPrevious, action.KindNext,
		action.KindVolumeUp, action.KindVolumeDown,
		action.KindScrollUp, action.KindScrollDown,
	} {
		if _, ok := routes[k]; !ok {
			t.Errorf("no default route for %s", k)
		}
	}
	if _, ok := routes[action.KindNoop]; ok {
		t.Error("noop must not be routed")
	}
}

func TestDispatcher_Check(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Check(); err != nil {
		t.Errorf("Check() with all plugins installed = %v", err)
	}

	dir := t.TempDir()
	writePlugin(t, dir, SystemControl, recordScript, "media-play-pause", "media-next")
	manager := NewManager(dir, zaptest.NewLogger(t).Sugar())
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	partial := NewDispatcher(manager, NewExecutor(0), nil)

	err := partial.Check()
	if err == nil {
		t.Fatal("expected Check() to report missing routes")
	}
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected missing keyboard plugin in %v", err)
	}
	for _, k := range []action.Kind{action.KindPrevious, action.KindVolumeUp, action.KindScrollDown} {
		if !strings.Contains(err.Error(), string(k)+":") {
			t.Errorf("expected %s in %v", k, err)
		}
	}
	if strings.Contains(err.Error(), string(action.KindPlayPause)+":") {
		t.Errorf("play_pause is installed but reported: %v", err)
	}
}
