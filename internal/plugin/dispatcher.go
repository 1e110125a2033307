package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/action"
)

// Plugin names used by the default routes.
const (
	SystemControl = "system-control"
	Keyboard      = "keyboard"
)

// ErrNoRoute is returned when a command kind has no plugin route.
var ErrNoRoute = errors.New("no plugin route for command")

// Route names the plugin action that performs a command.
type Route struct {
	Plugin string          `json:"plugin"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// DefaultRoutes returns the stock command table: media keys and volume
// through system-control, page up/down through keyboard.
func DefaultRoutes() map[action.Kind]Route {
	return map[action.Kind]Route{
		action.KindPlayPause:  {Plugin: SystemControl, Action: "media-play-pause"},
		action.KindPrevious:   {Plugin: SystemControl, Action: "media-prev"},
		action.KindNext:       {Plugin: SystemControl, Action: "media-next"},
		action.KindVolumeUp:   {Plugin: SystemControl, Action: "volume-up"},
		action.KindVolumeDown: {Plugin: SystemControl, Action: "volume-down"},
		action.KindScrollUp:   {Plugin: Keyboard, Action: "key-code", Params: json.RawMessage(`{"key_code":116}`)},
		action.KindScrollDown: {Plugin: Keyboard, Action: "key-code", Params: json.RawMessage(`{"key_code":121}`)},
	}
}

// Dispatcher performs commands by running the routed plugin action.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	routes   map[action.Kind]Route
	logger   *zap.SugaredLogger
}

// NewDispatcher creates a Dispatcher using DefaultRoutes.
func NewDispatcher(manager *Manager, executor *Executor, logger *zap.SugaredLogger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		routes:   DefaultRoutes(),
		logger:   logger,
	}
}

// resolve finds the route and installed plugin that perform kind.
func (d *Dispatcher) resolve(kind action.Kind) (Route, *Plugin, error) {
	route, ok := d.routes[kind]
	if !ok {
		return Route{}, nil, fmt.Errorf("%w: %s", ErrNoRoute, kind)
	}

	p, err := d.manager.Get(route.Plugin)
	if err != nil {
		return route, nil, fmt.Errorf("%s: %w", route.Plugin, err)
	}
	if !p.Manifest.Supports(route.Action) {
		return route, nil, fmt.Errorf("plugin %s does not support %s", route.Plugin, route.Action)
	}
	return route, p, nil
}

// Check resolves every route against the installed plugins and joins the
// failures, ordered by command kind. It returns nil when all commands can
// be performed.
func (d *Dispatcher) Check() error {
	var errs []error
	for _, kind := range slices.Sorted(maps.Keys(d.routes)) {
		if _, _, err := d.resolve(kind); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

// Execute performs cmd. Noop commands are accepted and do nothing.
func (d *Dispatcher) Execute(ctx context.Context, cmd action.Command) error {
	if cmd.IsNoop() {
		return nil
	}

	route, p, err := d.resolve(cmd.Kind)
	if err != nil {
		return err
	}

	resp, err := d.executor.Execute(ctx, p, &Request{
		Action:  route.Action,
		Command: string(cmd.Kind),
		Value:   cmd.Param,
		Params:  route.Params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s action %s: %s", route.Plugin, route.Action, resp.Error)
	}

	d.logger.Debugw("command executed", "command", cmd.String(), "plugin", route.Plugin, "action", route.Action)
	return nil
}
