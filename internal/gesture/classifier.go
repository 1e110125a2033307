package gesture

import "github.com/ayusman/mudra/internal/action"

// ScrollSpan is the horizontal distance either side of the wrist that maps
// the index fingertip onto the scroll parameter range.
const ScrollSpan = 0.2

// Params are the thresholds the classifier evaluates against.
type Params struct {
	PinchThreshold       float64 `json:"pinch_threshold"`
	WideAngleThreshold   float64 `json:"wide_angle_threshold"`
	NarrowAngleThreshold float64 `json:"narrow_angle_threshold"`
	VolMinDist           float64 `json:"vol_min_dist"`
	VolMaxDist           float64 `json:"vol_max_dist"`
	InvertDirection      bool    `json:"invert_direction"`
}

// Input is everything a rule may inspect for one frame.
type Input struct {
	Features Features
	Frame    Frame
	Params   Params
	Bindings Bindings
}

// Rule is a single predicate in the classification priority list.
type Rule struct {
	Name  string
	Match func(in Input) (Event, bool)
}

// Classifier evaluates rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier with the standard rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// DefaultRules returns the gesture rules in priority order:
// pinch, wide angle, narrow angle.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "pinch", Match: matchPinch},
		{Name: "wide-angle", Match: matchWideAngle},
		{Name: "narrow-angle", Match: matchNarrowAngle},
	}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Classify returns at most one event for the frame.
func (c *Classifier) Classify(f Features, raw Frame, p Params, b Bindings) Event {
	in := Input{Features: f, Frame: raw, Params: p, Bindings: b}
	for _, r := range c.rules {
		if ev, ok := r.Match(in); ok {
			return ev
		}
	}
	return None()
}

func matchPinch(in Input) (Event, bool) {
	if in.Features.PinchDistance < in.Params.PinchThreshold {
		return Discrete(Pinch), true
	}
	return Event{}, false
}

func matchWideAngle(in Input) (Event, bool) {
	if in.Features.Degenerate || in.Features.WristAngleDeg <= in.Params.WideAngleThreshold {
		return Event{}, false
	}

	left := in.Frame.IndexTip.X < in.Frame.Wrist.X
	if in.Params.InvertDirection {
		left = !left
	}
	if left {
		return Discrete(WideLeft), true
	}
	return Discrete(WideRight), true
}

func matchNarrowAngle(in Input) (Event, bool) {
	f := in.Features
	if f.Degenerate || f.WristAngleDeg > in.Params.NarrowAngleThreshold || f.PinchDistance < in.Params.PinchThreshold {
		return Event{}, false
	}

	bound := in.Bindings.Lookup(NarrowAngle)
	switch bound {
	case action.Volume:
		p := Percent(f.PinchDistance, in.Params.VolMinDist, in.Params.VolMaxDist)
		return Continuous(NarrowAngle, bound, p), true
	case action.Scroll:
		wx := in.Frame.Wrist.X
		p := Percent(in.Frame.IndexTip.X, wx-ScrollSpan, wx+ScrollSpan)
		return Continuous(NarrowAngle, bound, p), true
	default:
		ev := Discrete(NarrowAngle)
		ev.Action = bound
		return ev, true
	}
}
