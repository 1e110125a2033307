package engine

import (
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
)

// Result describes the outcome of evaluating one frame.
type Result struct {
	At        time.Time        `json:"at"`
	HandFound bool             `json:"hand_found"`
	Features  gesture.Features `json:"features"`
	Event     gesture.Event    `json:"event"`
	Command   action.Command   `json:"command"`
	Gate      GateState        `json:"gate"`
	Remaining time.Duration    `json:"cooldown_remaining"`
	Paused    bool             `json:"paused"`
	Committed bool             `json:"committed"`
}

// Engine evaluates frames strictly one at a time. It is not safe for
// concurrent use; the worker owns it.
type Engine struct {
	cfg        *config.Config
	classifier *gesture.Classifier
	mapper     Mapper
	state      State
}

// New creates an Engine for cfg, or the defaults if cfg is nil.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{
		cfg:        cfg,
		classifier: gesture.NewClassifier(),
	}
}

// Config returns the snapshot currently in use.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// SetConfig installs a new snapshot and restarts the engine state. Passing
// the snapshot already in use is a no-op.
func (e *Engine) SetConfig(cfg *config.Config) {
	if cfg == nil || cfg == e.cfg {
		return
	}
	e.cfg = cfg
	e.state.Reset()
}

// State returns a copy of the engine state.
func (e *Engine) State() State {
	return e.state
}

// Evaluate runs the full pipeline for one frame. A nil frame means no hand
// was tracked this cycle: only the gate advances.
func (e *Engine) Evaluate(frame *gesture.Frame, now time.Time) Result {
	e.state.Gate.Tick(now, e.cfg.Cooldown())

	res := Result{At: now, Event: gesture.None(), Command: action.NoopCommand()}
	if frame != nil {
		res.HandFound = true
		res.Features = gesture.Extract(*frame)

		if e.state.Gate.Ready() {
			res.Event = e.classifier.Classify(res.Features, *frame, e.cfg.Params, e.cfg.Bindings)
			res.Command = e.mapper.Resolve(res.Event, e.cfg, &e.state, now)

			if res.Event.Kind == gesture.EventDiscrete && !res.Command.IsNoop() {
				e.state.Gate.Arm(now)
				res.Committed = true
			}
		}
	}

	return e.finish(res, now)
}

// Observe is the paused variant of Evaluate: features are computed for
// display and the gate keeps advancing, but nothing is classified or emitted.
func (e *Engine) Observe(frame *gesture.Frame, now time.Time) Result {
	e.state.Gate.Tick(now, e.cfg.Cooldown())

	res := Result{At: now, Event: gesture.None(), Command: action.NoopCommand(), Paused: true}
	if frame != nil {
		res.HandFound = true
		res.Features = gesture.Extract(*frame)
	}
	return e.finish(res, now)
}

func (e *Engine) finish(res Result, now time.Time) Result {
	res.Gate = e.state.Gate.State()
	res.Remaining = e.state.Gate.Remaining(now, e.cfg.Cooldown())
	return res
}
