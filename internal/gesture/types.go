package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/action"
)

// ID names a gesture slot that can be bound to an action.
type ID string

const (
	// Pinch is the thumb and index fingertips touching.
	Pinch ID = "pinch"
	// WideLeft is a wide thumb-index angle with the index pointing left.
	WideLeft ID = "wide_left"
	// WideRight is a wide thumb-index angle with the index pointing right.
	WideRight ID = "wide_right"
	// NarrowAngle is a narrow thumb-index angle with the fingertips apart.
	NarrowAngle ID = "narrow_angle"
)

// IDs lists every gesture slot in priority order.
var IDs = []ID{Pinch, WideLeft, WideRight, NarrowAngle}

var descriptions = map[ID]string{
	Pinch:       "Thumb and index touching",
	WideLeft:    "Wide thumb-index angle, hand pointing left",
	WideRight:   "Wide thumb-index angle, hand pointing right",
	NarrowAngle: "Narrow thumb-index angle, fingertips apart",
}

// ParseID validates s against the known gesture slots.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if _, ok := descriptions[id]; !ok {
		return "", fmt.Errorf("unknown gesture %q", s)
	}
	return id, nil
}

// Description returns a human-readable description of the gesture.
func (id ID) Description() string {
	return descriptions[id]
}

// Bindings maps gesture slots to the actions they trigger.
type Bindings map[ID]action.Name

// Lookup returns the action bound to id. Unbound or invalid slots resolve to action.Noop.
func (b Bindings) Lookup(id ID) action.Name {
	n, ok := b[id]
	if !ok || !n.Valid() {
		return action.Noop
	}
	return n
}

// Clone returns an independent copy of the bindings.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// EventKind discriminates the GestureEvent variants.
type EventKind uint8

const (
	// EventNone means no qualifying gesture this frame.
	EventNone EventKind = iota
	// EventDiscrete is a one-shot gesture subject to cooldown.
	EventDiscrete
	// EventContinuous carries a parameter in [0,100] and bypasses cooldown.
	EventContinuous
)

func (k EventKind) String() string {
	switch k {
	case EventDiscrete:
		return "discrete"
	case EventContinuous:
		return "continuous"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is the classifier output for one frame.
type Event struct {
	Kind    EventKind `json:"kind"`
	Gesture ID        `json:"gesture,omitempty"`
	// Action is the binding resolved by the classifier. It is set for
	// continuous events and for discrete narrow-angle events.
	Action action.Name `json:"action,omitempty"`
	Param  float64     `json:"param,omitempty"`
}

// None returns the empty event.
func None() Event { return Event{Kind: EventNone} }

// Discrete returns a discrete event for id.
func Discrete(id ID) Event { return Event{Kind: EventDiscrete, Gesture: id} }

// Continuous returns a continuous event for id bound to a with parameter p.
func Continuous(id ID, a action.Name, p float64) Event {
	return Event{Kind: EventContinuous, Gesture: id, Action: a, Param: p}
}
