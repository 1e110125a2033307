// Package tray provides the system tray menu for controlling the gesture worker.
package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
)

// refreshInterval is how often menu titles are resynced with the flags,
// which can also change through the HTTP API.
const refreshInterval = 500 * time.Millisecond

// Controller is the part of app.App the tray drives.
type Controller interface {
	Start() error
	Stop()
	Flags() *app.Flags
	Last() app.Telemetry
}

// Tray represents the system tray application.
type Tray struct {
	controller Controller
	logger     *zap.SugaredLogger
	onSettings func()
	onQuit     func()
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuRunning     *systray.MenuItem
	menuPause       *systray.MenuItem
	menuPreview     *systray.MenuItem
	menuLastCommand *systray.MenuItem
}

// New creates a new Tray driving c.
func New(c Controller, logger *zap.SugaredLogger) *Tray {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tray{controller: c, logger: logger}
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// menuTitles are the toggle labels for one flag state.
type menuTitles struct {
	running string
	pause   string
	preview string
	last    string
}

func titles(state app.FlagState, lastCommand string) menuTitles {
	m := menuTitles{
		running: "Start",
		pause:   "Pause",
		preview: "Show Preview",
		last:    "Last: none",
	}
	if state.Running {
		m.running = "Stop"
	}
	if state.Paused {
		m.pause = "Resume"
	}
	if state.PreviewVisible {
		m.preview = "Hide Preview"
	}
	if lastCommand != "" {
		m.last = "Last: " + lastCommand
	}
	return m
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuRunning = systray.AddMenuItem("Start", "Start or stop the camera")
	t.menuPause = systray.AddMenuItem("Pause", "Pause or resume gesture commands")
	t.menuPreview = systray.AddMenuItem("Show Preview", "Show or hide the camera preview")
	systray.AddSeparator()

	t.menuLastCommand = systray.AddMenuItem("Last: none", "Last command sent")
	t.menuLastCommand.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	t.refresh()

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.menuRunning.ClickedCh:
				t.handleRunning()
			case <-t.menuPause.ClickedCh:
				t.controller.Flags().TogglePaused()
			case <-t.menuPreview.ClickedCh:
				t.controller.Flags().TogglePreview()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			case <-ticker.C:
			}
			t.refresh()
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.controller.Stop()
}

// refresh syncs the menu titles with the current flags.
func (t *Tray) refresh() {
	m := titles(t.controller.Flags().Snapshot(), t.controller.Last().LastCommand)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuRunning == nil {
		return
	}
	t.menuRunning.SetTitle(m.running)
	t.menuPause.SetTitle(m.pause)
	t.menuPreview.SetTitle(m.preview)
	t.menuLastCommand.SetTitle(m.last)
}

// handleRunning starts or stops the worker.
func (t *Tray) handleRunning() {
	if t.controller.Flags().Snapshot().Running {
		t.controller.Stop()
		return
	}
	if err := t.controller.Start(); err != nil {
		t.logger.Errorw("start from tray failed", "error", err)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}
