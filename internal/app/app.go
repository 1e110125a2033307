// Package app runs the gesture worker and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/store"
)

// CommandQueueSize bounds the commands waiting for the executor. When the
// queue is full new commands are dropped so the frame loop never stalls.
const CommandQueueSize = 16

// ErrNoSource is returned by Start when the App has no sample source.
var ErrNoSource = errors.New("no sample source configured")

// Source yields one landmark sample per acquisition cycle. Next returns
// io.EOF when a finite source is exhausted; any other error ends the run.
type Source interface {
	Open() error
	Next() (*capture.Sample, error)
	Close() error
}

// Executor performs commands on the host.
type Executor interface {
	Execute(ctx context.Context, cmd action.Command) error
}

// Recorder keeps a log of emitted commands.
type Recorder interface {
	Record(e *store.Entry) error
}

// Config holds the collaborators of an App.
type Config struct {
	Source   Source
	Settings *config.Holder
	Executor Executor
	// History and Preview are optional.
	History Recorder
	Preview *preview.Buffer
	Logger  *zap.SugaredLogger
	// FrameInterval paces the loop; zero polls the source back to back.
	FrameInterval time.Duration
}

// Telemetry is published after every evaluated frame.
type Telemetry struct {
	engine.Result
	LastCommand string    `json:"last_command"`
	Flags       FlagState `json:"flags"`
}

// App owns the worker. Start and Stop may be called from any goroutine.
type App struct {
	config Config
	logger *zap.SugaredLogger
	flags  Flags

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	lmu       sync.RWMutex
	listeners map[int]func(Telemetry)
	nextID    int
	last      Telemetry
}

// New creates an App. The App starts stopped and with the preview hidden.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Settings == nil {
		config.Settings = newDefaultHolder()
	}
	return &App{
		config:    config,
		logger:    logger,
		listeners: make(map[int]func(Telemetry)),
	}
}

// Flags returns the shared lifecycle flags.
func (a *App) Flags() *Flags {
	return &a.flags
}

// Settings returns the config holder the worker reads each frame.
func (a *App) Settings() *config.Holder {
	return a.config.Settings
}

// Start opens the source and launches the worker. Starting a running App
// is a no-op. A failure to open the source is returned and leaves the App
// stopped.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		select {
		case <-a.done:
			// The last run ended on its own; start a fresh one.
			a.cancel()
			a.cancel, a.done = nil, nil
		default:
			return nil
		}
	}
	if a.config.Source == nil {
		return ErrNoSource
	}

	if err := a.config.Source.Open(); err != nil {
		a.err = err
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.err = nil
	a.flags.setRunning(true)

	w := newWorker(a, engine.New(a.config.Settings.Load()))
	go w.run(ctx, a.done)

	a.logger.Infow("worker started")
	return nil
}

// Stop signals the worker and waits until it has released the source.
// It is safe to call at any time and more than once.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.reap(done)
}

// Wait blocks until the current run ends on its own or is stopped, and
// returns its terminal error.
func (a *App) Wait() error {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()

	if done != nil {
		<-done
		a.reap(done)
	}
	return a.Err()
}

// Done is closed when the current run ends. It returns nil when stopped.
func (a *App) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Err returns the acquisition failure that ended the last run, if any.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Running reports whether the worker is active.
func (a *App) Running() bool {
	return a.flags.Snapshot().Running
}

// reap clears the run handles once done has closed, unless a newer run
// replaced them.
func (a *App) reap(done chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done == done {
		a.cancel = nil
		a.done = nil
	}
}

func (a *App) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Subscribe registers fn to receive telemetry after every frame. fn runs
// on the worker goroutine and must not block. The returned func removes it.
func (a *App) Subscribe(fn func(Telemetry)) func() {
	a.lmu.Lock()
	defer a.lmu.Unlock()

	id := a.nextID
	a.nextID++
	a.listeners[id] = fn

	return func() {
		a.lmu.Lock()
		defer a.lmu.Unlock()
		delete(a.listeners, id)
	}
}

// Last returns the most recent telemetry.
func (a *App) Last() Telemetry {
	a.lmu.RLock()
	defer a.lmu.RUnlock()
	t := a.last
	t.Flags = a.flags.Snapshot()
	return t
}

func (a *App) publish(t Telemetry) {
	a.lmu.Lock()
	a.last = t
	a.lmu.Unlock()

	a.lmu.RLock()
	defer a.lmu.RUnlock()
	for _, fn := range a.listeners {
		fn(t)
	}
}
