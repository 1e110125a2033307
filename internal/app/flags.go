package app

import "sync"

// FlagState is a consistent copy of the lifecycle flags.
type FlagState struct {
	Running        bool `json:"running"`
	Paused         bool `json:"paused"`
	PreviewVisible bool `json:"preview_visible"`
}

// Flags are the lifecycle switches shared by the worker and the control
// surfaces. The lock is held only for a read or a flip, never across a
// frame evaluation, so a change takes effect at the next frame boundary.
type Flags struct {
	mu    sync.Mutex
	state FlagState
}

// Snapshot returns all flags at once.
func (f *Flags) Snapshot() FlagState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetPaused sets the paused flag.
func (f *Flags) SetPaused(paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Paused = paused
}

// TogglePaused flips the paused flag and returns the new value.
func (f *Flags) TogglePaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Paused = !f.state.Paused
	return f.state.Paused
}

// SetPreviewVisible sets whether preview frames are rendered.
func (f *Flags) SetPreviewVisible(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PreviewVisible = visible
}

// TogglePreview flips preview visibility and returns the new value.
func (f *Flags) TogglePreview() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.PreviewVisible = !f.state.PreviewVisible
	return f.state.PreviewVisible
}

// setRunning is owned by App; callers start and stop through it.
func (f *Flags) setRunning(running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Running = running
}
