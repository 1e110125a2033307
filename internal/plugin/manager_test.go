package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	written := writePlugin(t, tmpDir, "test-plugin", "exit 0\n", "action1", "action2")

	manager := NewManager(tmpDir, zaptest.NewLogger(t).Sugar())
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "test-plugin" {
		t.Errorf("expected plugin name 'test-plugin', got %q", plugin.Manifest.Name)
	}
	if len(plugin.Manifest.Actions) != 2 {
		t.Errorf("expected 2 actions, got %d", len(plugin.Manifest.Actions))
	}
	if plugin.Path != written.Path {
		t.Errorf("expected path %q, got %q", written.Path, plugin.Path)
	}
	if plugin.Executable != written.Executable {
		t.Errorf("expected executable %q, got %q", written.Executable, plugin.Executable)
	}
}

func TestManager_Discover_MultiplePlugins(t *testing.T) {
	tmpDir := t.TempDir()
	writePlugin(t, tmpDir, "plugin-b", "exit 0\n", "action")
	writePlugin(t, tmpDir, "plugin-a", "exit 0\n", "action")

	manager := NewManager(tmpDir, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "plugin-a" {
		t.Errorf("expected list sorted by name, got %q first", plugins[0].Manifest.Name)
	}
}

func TestManager_Discover_Skips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{name: "empty dir", setup: func(t *testing.T, dir string) {}},
		{name: "invalid json", setup: func(t *testing.T, dir string) {
			pluginDir := filepath.Join(dir, "bad-plugin")
			os.MkdirAll(pluginDir, 0755)
			if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), []byte("not valid json"), 0644); err != nil {
				t.Fatal(err)
			}
		}},
		{name: "no manifest", setup: func(t *testing.T, dir string) {
			os.MkdirAll(filepath.Join(dir, "bare"), 0755)
		}},
		{name: "stray file", setup: func(t *testing.T, dir string) {
			os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			manager := NewManager(dir, zaptest.NewLogger(t).Sugar())
			if err := manager.Discover(); err != nil {
				t.Fatalf("Discover() failed: %v", err)
			}
			if n := len(manager.List()); n != 0 {
				t.Fatalf("expected 0 plugins, got %d", n)
			}
		})
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist", nil)

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Fatal("expected no plugins")
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writePlugin(t, tmpDir, "my-plugin", "exit 0\n", "run")

	manager := NewManager(tmpDir, nil)
	if _, err := manager.Get("my-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound before Discover, got %v", err)
	}

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !plugin.Manifest.Supports("run") || plugin.Manifest.Supports("walk") {
		t.Errorf("unexpected action support for %v", plugin.Manifest.Actions)
	}

	if _, err := manager.Get("nonexistent-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	pluginDir := "/path/to/plugins"
	manager := NewManager(pluginDir, nil)

	if manager.PluginDir() != pluginDir {
		t.Errorf("expected plugin dir %q, got %q", pluginDir, manager.PluginDir())
	}
}
