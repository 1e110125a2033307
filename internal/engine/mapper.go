package engine

import (
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Dead zone bounds for continuous parameters. Values in [DeadZoneLow,
// DeadZoneHigh] produce no command.
const (
	DeadZoneLow  = 30.0
	DeadZoneHigh = 70.0
)

// State is the mutable per-run engine state. It is owned by the worker and
// restarted whenever the configuration snapshot changes.
type State struct {
	Gate Gate
	// LastScrollFiredAt is the zero time until the first scroll command fires.
	LastScrollFiredAt time.Time
}

// Reset restores the initial state: gate ready, scroll never fired.
func (s *State) Reset() {
	s.Gate.Reset()
	s.LastScrollFiredAt = time.Time{}
}

// Mapper resolves classified gestures into commands.
type Mapper struct{}

// Resolve maps ev to a command. Scroll emission updates st.LastScrollFiredAt.
func (Mapper) Resolve(ev gesture.Event, cfg *config.Config, st *State, now time.Time) action.Command {
	switch ev.Kind {
	case gesture.EventDiscrete:
		bound := ev.Action
		if bound == "" {
			bound = cfg.Bindings.Lookup(ev.Gesture)
		}
		return action.Command{Kind: bound.OneShot()}

	case gesture.EventContinuous:
		switch ev.Action {
		case action.Volume:
			return splitDeadZone(ev.Param, action.KindVolumeDown, action.KindVolumeUp)
		case action.Scroll:
			cmd := splitDeadZone(ev.Param, action.KindScrollDown, action.KindScrollUp)
			if cmd.IsNoop() {
				return cmd
			}
			last := st.LastScrollFiredAt
			if !last.IsZero() && now.Sub(last) <= cfg.ScrollInterval() {
				return action.NoopCommand()
			}
			st.LastScrollFiredAt = now
			return cmd
		}
	}
	return action.NoopCommand()
}

func splitDeadZone(p float64, low, high action.Kind) action.Command {
	switch {
	case p < DeadZoneLow:
		return action.WithParam(low, p)
	case p > DeadZoneHigh:
		return action.WithParam(high, p)
	default:
		return action.NoopCommand()
	}
}
