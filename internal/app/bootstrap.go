// Package app bootstraps the signage daemon: it loads configuration,
// wires the components together and runs their loops until shutdown.
package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"signage/internal/audio"
	"signage/internal/catalog"
	"signage/internal/config"
	"signage/internal/engine"
	"signage/internal/obs"
	"signage/internal/probe"
	"signage/internal/reconcile"
	"signage/internal/rotation"
	"signage/internal/schedule"
	"signage/internal/watcher"
	"signage/internal/webdav"
	"signage/pkg/logging"
)

// Options are the command-line level knobs for the daemon.
type Options struct {
	// ConfigPath overrides the default configuration directory.
	ConfigPath string

	// Debug forces debug-level logging regardless of configuration.
	Debug bool

	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

// Application holds the wired component graph. NewApplication builds
// it, Run drives it.
type Application struct {
	cfg config.Config

	client    *obs.Client
	engine    *engine.Engine
	watcher   *watcher.Watcher
	scheduler *schedule.Scheduler
	syncer    *webdav.Syncer
	player    *audio.Player
}

// NewApplication loads configuration and constructs every component.
// Nothing touches the network yet; that happens in Run.
func NewApplication(opts Options) (*Application, error) {
	logOutput := opts.LogOutput
	if logOutput == nil {
		logOutput = os.Stdout
	}
	logging.Init(logging.LevelInfo, logOutput)

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if opts.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, logOutput)
	logging.Info("Bootstrap", "Loaded configuration from %s", configPath)

	formats := catalog.NewFormats(
		cfg.Media.VideoExtensions,
		cfg.Media.ImageExtensions,
		cfg.Media.AudioExtensions,
	)

	client := obs.NewClient(obs.Config{
		Host:     cfg.OBS.Host,
		Port:     cfg.OBS.Port,
		Password: cfg.OBS.Password,
		Timeout:  time.Duration(cfg.OBS.TimeoutSeconds) * time.Second,
	})

	resolver := probe.NewResolver(
		probe.FFProbe{Timeout: secondsDuration(cfg.Media.ProbeTimeoutSeconds)},
		cfg.Media.SlideDurationSeconds,
		cfg.Media.MaxVideoSeconds,
		cfg.Media.FallbackVideoSeconds,
	)

	reconciler := reconcile.New(client, cfg.Media.CanvasWidth, cfg.Media.CanvasHeight)
	clock := rotation.NewClock(client, cfg.Media.TransitionOffsetSeconds)
	eng := engine.New(client, reconciler, resolver, clock, formats, cfg.Content.Dir)

	w := watcher.New(cfg.Content.Dir, formats, secondsDuration(cfg.Content.DebounceSeconds))

	app := &Application{
		cfg:     cfg,
		client:  client,
		engine:  eng,
		watcher: w,
	}

	if cfg.Schedule.Enabled {
		scheduler, err := schedule.NewScheduler(cfg.Schedule)
		if err != nil {
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
		app.scheduler = scheduler
	}

	if cfg.Sync.Enabled {
		app.syncer = webdav.New(webdav.Config{
			URL:        cfg.Sync.URL,
			Username:   cfg.Sync.Username,
			Password:   cfg.Sync.Password,
			RemotePath: cfg.Sync.RemotePath,
			Timeout:    time.Duration(cfg.Sync.TimeoutSeconds) * time.Second,
		}, cfg.Content.Dir, formats, eng)
	}

	if cfg.Audio.Enabled {
		app.player = audio.NewPlayer(cfg.Content.Dir, formats, cfg.Audio.Volume)
	}

	return app, nil
}

func secondsDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
