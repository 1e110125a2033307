package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestPlugin_Bundled_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	if runtime.GOOS != "darwin" {
		t.Skip("bundled plugins only work on macOS")
	}

	for _, name := range []string{SystemControl, Keyboard} {
		t.Run(name, func(t *testing.T) {
			pluginDir := findPluginDir(name)
			if pluginDir == "" {
				t.Skipf("%s plugin not built", name)
			}

			mgr := NewManager(filepath.Dir(pluginDir), nil)
			if err := mgr.Discover(); err != nil {
				t.Fatalf("Discover() error = %v", err)
			}

			plug, err := mgr.Get(name)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			// An unknown action has no side effects and must be rejected.
			resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "invalid-action"})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if resp.Success {
				t.Error("expected failure for invalid action")
			}
		})
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
