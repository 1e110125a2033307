// Package action defines the closed set of actions a gesture can be bound to
// and the commands the engine emits for the host application.
package action

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when an action name is not part of the closed set.
var ErrUnknownAction = errors.New("unknown action")

// Name identifies an action that a gesture slot can be bound to.
type Name string

const (
	// PlayPause toggles media playback.
	PlayPause Name = "play_pause"
	// Previous skips to the previous track.
	Previous Name = "previous"
	// Next skips to the next track.
	Next Name = "next"
	// Volume drives the system volume from a continuous gesture.
	Volume Name = "volume"
	// Scroll drives page scrolling from a continuous gesture.
	Scroll Name = "scroll"
	// Noop does nothing.
	Noop Name = "noop"
)

// Names lists every bindable action in display order.
var Names = []Name{PlayPause, Previous, Next, Volume, Scroll, Noop}

var displayNames = map[Name]string{
	PlayPause: "Play/Pause",
	Previous:  "Previous Track",
	Next:      "Next Track",
	Volume:    "Volume Control",
	Scroll:    "Scroll Control",
	Noop:      "Do Nothing",
}

// ParseName validates s against the closed action set.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := displayNames[n]; !ok {
		return Noop, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return n, nil
}

// Valid reports whether n belongs to the closed action set.
func (n Name) Valid() bool {
	_, ok := displayNames[n]
	return ok
}

// Continuous reports whether the action consumes a per-frame parameter.
func (n Name) Continuous() bool {
	return n == Volume || n == Scroll
}

// DisplayName returns the human-readable label of the action.
func (n Name) DisplayName() string {
	if d, ok := displayNames[n]; ok {
		return d
	}
	return string(n)
}

// Kind identifies a concrete command sent to the host application.
type Kind string

const (
	KindPlayPause  Kind = "play_pause"
	KindPrevious   Kind = "previous"
	KindNext       Kind = "next"
	KindVolumeUp   Kind = "volume_up"
	KindVolumeDown Kind = "volume_down"
	KindScrollUp   Kind = "scroll_up"
	KindScrollDown Kind = "scroll_down"
	KindNoop       Kind = "noop"
)

var kindLabels = map[Kind]string{
	KindPlayPause:  "PLAY/PAUSE",
	KindPrevious:   "PREVIOUS TRACK",
	KindNext:       "NEXT TRACK",
	KindVolumeUp:   "VOLUME UP",
	KindVolumeDown: "VOLUME DOWN",
	KindScrollUp:   "SCROLL UP",
	KindScrollDown: "SCROLL DOWN",
	KindNoop:       "",
}

// Label returns the upper-case label shown as "last command".
func (k Kind) Label() string {
	return kindLabels[k]
}

// OneShot maps a discrete action to its command kind.
// Continuous actions and Noop map to KindNoop.
func (n Name) OneShot() Kind {
	switch n {
	case PlayPause:
		return KindPlayPause
	case Previous:
		return KindPrevious
	case Next:
		return KindNext
	default:
		return KindNoop
	}
}

// Command is a resolved instruction for the external command executor.
// Param is set for commands derived from a continuous gesture.
type Command struct {
	Kind  Kind     `json:"kind"`
	Param *float64 `json:"param,omitempty"`
}

// NoopCommand returns the command that does nothing.
func NoopCommand() Command {
	return Command{Kind: KindNoop}
}

// WithParam returns a command of kind k carrying p.
func WithParam(k Kind, p float64) Command {
	return Command{Kind: k, Param: &p}
}

// IsNoop reports whether the command has no observable effect.
func (c Command) IsNoop() bool {
	return c.Kind == KindNoop || c.Kind == ""
}

func (c Command) String() string {
	if c.Param != nil {
		return fmt.Sprintf("%s(%.1f)", c.Kind, *c.Param)
	}
	return string(c.Kind)
}
