// Package engine turns landmark frames into commands: it runs feature
// extraction and classification, debounces discrete gestures and rate
// limits continuous ones.
package engine

import "time"

// GateState is the state of the cooldown gate.
type GateState uint8

const (
	// Ready means a discrete gesture may commit.
	Ready GateState = iota
	// Cooldown means a discrete gesture committed recently.
	Cooldown
)

func (s GateState) String() string {
	if s == Cooldown {
		return "cooldown"
	}
	return "ready"
}

// MarshalText implements encoding.TextMarshaler.
func (s GateState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Gate suppresses repeated discrete commits within a time window.
type Gate struct {
	state     GateState
	startedAt time.Time
}

// State returns the current gate state.
func (g Gate) State() GateState {
	return g.state
}

// Ready reports whether the gate accepts a discrete commit.
func (g Gate) Ready() bool {
	return g.state == Ready
}

// Tick releases the gate once more than window has passed since it was armed.
func (g *Gate) Tick(now time.Time, window time.Duration) {
	if g.state == Cooldown && now.Sub(g.startedAt) > window {
		g.state = Ready
	}
}

// Arm moves the gate into cooldown starting at now.
func (g *Gate) Arm(now time.Time) {
	g.state = Cooldown
	g.startedAt = now
}

// Reset forces the gate back to ready.
func (g *Gate) Reset() {
	g.state = Ready
	g.startedAt = time.Time{}
}

// Remaining returns how long the gate stays in cooldown, or 0 when ready.
func (g Gate) Remaining(now time.Time, window time.Duration) time.Duration {
	if g.state != Cooldown {
		return 0
	}
	left := window - now.Sub(g.startedAt)
	if left < 0 {
		return 0
	}
	return left
}
