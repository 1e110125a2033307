package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// historyKeep bounds the command history kept across restarts.
const historyKeep = 1000

type options struct {
	camera     int
	fps        int
	dataDir    string
	pluginDir  string
	configPath string
	addr       string
	logLevel   string
	headless   bool
	autostart  bool
}

func parseFlags() options {
	homeDir, _ := os.UserHomeDir()
	defaultData := filepath.Join(homeDir, ".mudra")

	var o options
	flag.IntVar(&o.camera, "camera", 0, "camera device id")
	flag.IntVar(&o.fps, "fps", capture.DefaultFPS, "camera frames per second")
	flag.StringVar(&o.dataDir, "data", defaultData, "data directory for the database")
	flag.StringVar(&o.pluginDir, "plugins", "", "plugin directory (default <data>/plugins, then ./plugins)")
	flag.StringVar(&o.configPath, "config", "", "JSON config file mirrored on save (default <data>/config.json)")
	flag.StringVar(&o.addr, "addr", "127.0.0.1:8080", "settings server listen address")
	flag.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&o.headless, "headless", false, "run without the system tray")
	flag.BoolVar(&o.autostart, "autostart", true, "start the camera on launch")
	flag.Parse()

	if o.configPath == "" {
		o.configPath = filepath.Join(o.dataDir, "config.json")
	}
	if o.pluginDir == "" {
		o.pluginDir = firstDir(filepath.Join(o.dataDir, "plugins"), "plugins")
		if o.pluginDir == "" {
			o.pluginDir = filepath.Join(o.dataDir, "plugins")
		}
	}
	return o
}

func main() {
	o := parseFlags()

	logger, err := logging.New(o.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(o, logger); err != nil {
		logger.Errorw("mudra exited", "error", err)
		os.Exit(1)
	}
}

func run(o options, logger *zap.SugaredLogger) error {
	if err := os.MkdirAll(o.dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(filepath.Join(o.dataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	if n, err := st.History().Prune(historyKeep); err != nil {
		logger.Warnw("pruning history", "error", err)
	} else if n > 0 {
		logger.Infow("pruned history", "deleted", n)
	}

	holder := config.NewHolder(loadConfig(st, o.configPath, logger))

	det := newDetector(logger)
	source := capture.NewTracker(capture.NewCamera(o.camera), det, logger)
	source.SetFPS(o.fps)

	manager := plugin.NewManager(o.pluginDir, logger)
	if err := manager.Discover(); err != nil {
		logger.Warnw("plugin discovery failed", "dir", o.pluginDir, "error", err)
	}
	logger.Infow("plugins loaded", "dir", o.pluginDir, "count", len(manager.List()))
	dispatcher := plugin.NewDispatcher(manager, plugin.NewExecutor(plugin.DefaultTimeout), logger)
	if err := dispatcher.Check(); err != nil {
		logger.Warnw("some commands have no working plugin", "error", err)
	}

	frames := preview.NewBuffer()
	a := app.New(app.Config{
		Source:   source,
		Settings: holder,
		Executor: dispatcher,
		History:  st.History(),
		Preview:  frames,
		Logger:   logger,

		FrameInterval: source.FrameInterval(),
	})
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir:  findWebDir(o.dataDir),
		App:        a,
		Store:      st,
		Preview:    frames,
		ConfigPath: o.configPath,
		Logger:     logger,
	})
	defer srv.Close()

	httpServer := &http.Server{Addr: o.addr, Handler: srv}
	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("settings server listening", "addr", o.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()

	if o.autostart {
		if err := a.Start(); err != nil {
			logger.Errorw("camera start failed", "error", err)
		}
	}

	go func() {
		for {
			if a.Done() == nil {
				time.Sleep(time.Second)
				continue
			}
			if err := a.Wait(); err != nil {
				logger.Errorw("worker ended", "error", err)
			}
		}
	}()

	settingsURL := "http://" + o.addr
	if o.headless {
		return waitForSignal(serverErr, logger)
	}

	t := tray.New(a, logger)
	t.OnSettings(func() {
		if err := openBrowser(settingsURL); err != nil {
			logger.Warnw("opening settings", "url", settingsURL, "error", err)
		}
	})
	t.OnQuit(func() {
		logger.Infow("quit from tray")
	})

	go func() {
		if err := waitForSignal(serverErr, logger); err != nil {
			logger.Errorw("server failed", "error", err)
		}
		a.Stop()
		os.Exit(0)
	}()

	t.Run()
	return nil
}

func waitForSignal(serverErr <-chan error, logger *zap.SugaredLogger) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Infow("shutting down", "signal", s.String())
		return nil
	case err := <-serverErr:
		return err
	}
}

// loadConfig prefers the snapshot stored in the database, then the config
// file, then the defaults.
func loadConfig(st *store.Store, path string, logger *zap.SugaredLogger) *config.Config {
	cfg, issues, err := st.Settings().LoadConfig()
	source := "store"
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warnw("stored config unreadable", "error", err)
		}
		source = path
		cfg, issues, err = config.Load(path)
		if err != nil {
			logger.Warnw("config file unreadable, using defaults", "path", path, "error", err)
		}
	}
	for _, issue := range issues {
		logger.Warnw("config corrected", "source", source, "issue", issue.String())
	}
	return cfg
}

// newDetector starts MediaPipe when its service script is installed and
// otherwise falls back to a detector that never finds a hand.
func newDetector(logger *zap.SugaredLogger) detector.Detector {
	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), logger)
	if err != nil {
		logger.Warnw("mediapipe unavailable, hand tracking disabled", "error", err)
		return detector.NewMockDetector()
	}
	return det
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the settings UI in common locations.
func findWebDir(dataDir string) string {
	return firstDir("web", "../web", "../../web", filepath.Join(dataDir, "web"))
}

// firstDir returns the first existing directory, made absolute when possible.
func firstDir(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
