package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/store"
)

func newDefaultHolder() *config.Holder {
	return config.NewHolder(config.DefaultConfig())
}

// emitted is a command on its way to the executor.
type emitted struct {
	cmd     action.Command
	gesture gesture.ID
	at      time.Time
}

// worker is one run of the frame loop. It owns the engine; nothing else
// touches it.
type worker struct {
	app    *App
	engine *engine.Engine
	queue  chan emitted
	last   string
}

func newWorker(a *App, e *engine.Engine) *worker {
	return &worker{
		app:    a,
		engine: e,
		queue:  make(chan emitted, CommandQueueSize),
	}
}

// run evaluates samples until ctx is cancelled, the source is exhausted or
// acquisition fails. The source is closed and queued commands are drained
// before done is closed.
func (w *worker) run(ctx context.Context, done chan struct{}) {
	a := w.app
	logger := a.logger

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.dispatch(context.WithoutCancel(ctx))
	}()

	defer func() {
		if err := a.config.Source.Close(); err != nil {
			logger.Warnw("closing source", "error", err)
		}
		close(w.queue)
		wg.Wait()
		a.flags.setRunning(false)
		logger.Infow("worker stopped")
		close(done)
	}()

	var tick <-chan time.Time
	if a.config.FrameInterval > 0 {
		ticker := time.NewTicker(a.config.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}

		sample, err := a.config.Source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Infow("source exhausted")
				return
			}
			logger.Errorw("acquisition failed", "error", err)
			a.fail(err)
			return
		}

		w.step(sample)
		sample.Close()
	}
}

// step runs the engine on one sample and fans the result out.
func (w *worker) step(sample *capture.Sample) {
	a := w.app
	cfg := a.config.Settings.Load()
	w.engine.SetConfig(cfg)
	flags := a.flags.Snapshot()

	var frame *gesture.Frame
	if sample.Hand != nil {
		f := sample.Hand.Frame()
		frame = &f
	}

	var res engine.Result
	if flags.Paused {
		res = w.engine.Observe(frame, sample.At)
	} else {
		res = w.engine.Evaluate(frame, sample.At)
	}

	if !res.Command.IsNoop() {
		w.last = res.Command.Kind.Label()
		select {
		case w.queue <- emitted{cmd: res.Command, gesture: res.Event.Gesture, at: sample.At}:
		default:
			a.logger.Warnw("command dropped, executor busy", "command", res.Command.String())
		}
	}

	if flags.PreviewVisible && a.config.Preview != nil && sample.Image != nil {
		preview.Draw(sample.Image, sample.Hand, preview.NewStatus(res, cfg, w.last))
		if data, err := preview.Encode(sample.Image, preview.DefaultQuality); err != nil {
			a.logger.Warnw("preview frame dropped", "error", err)
		} else {
			a.config.Preview.Publish(data)
		}
	}

	a.publish(Telemetry{Result: res, LastCommand: w.last, Flags: flags})
}

// dispatch executes queued commands in order until the queue is closed.
// ctx carries no cancellation: commands queued before Stop still run, each
// bounded by the executor's own timeout.
func (w *worker) dispatch(ctx context.Context) {
	a := w.app
	for e := range w.queue {
		entry := &store.Entry{Kind: e.cmd.Kind, Param: e.cmd.Param, Gesture: e.gesture, CreatedAt: e.at}

		if a.config.Executor != nil {
			if err := a.config.Executor.Execute(ctx, e.cmd); err != nil {
				a.logger.Errorw("command failed", "command", e.cmd.String(), "error", err)
				entry.Error = err.Error()
			} else {
				a.logger.Infow("command executed", "command", e.cmd.String(), "gesture", e.gesture)
			}
		}

		if a.config.History != nil {
			if err := a.config.History.Record(entry); err != nil {
				a.logger.Warnw("recording command", "error", err)
			}
		}
	}
}
