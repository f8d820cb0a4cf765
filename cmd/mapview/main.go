// Command mapview opens the orbit-camera map viewer.
//
//	mapview -config viewer.toml -watch -log-level debug -profile
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
)

// GLFW must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "mapview.toml", "path to the TOML configuration")
		watch      = flag.Bool("watch", false, "re-load the configuration when the file changes")
		logLevel   = flag.String("log-level", "", "override the configured log level (debug|info|warn|error)")
		profile    = flag.Bool("profile", false, "log frame stats once per second")
	)
	flag.Parse()

	level := &slog.LevelVar{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.Profiling = cfg.Profiling || *profile
	lvl, err := cfg.SlogLevel()
	if err != nil {
		logger.Error("invalid log level", "level", cfg.LogLevel, "error", err)
		return 1
	}
	level.Set(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := []engine.EngineBuilderOption{
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
		engine.WithLogLevel(level),
	}
	if *watch {
		w, err := config.Watch(ctx, *configPath)
		if err != nil {
			logger.Error("failed to watch config", "path", *configPath, "error", err)
			return 1
		}
		defer w.Close()
		options = append(options, engine.WithConfigSource(w))
	}

	eng, err := engine.NewEngine(ctx, options...)
	if err != nil {
		logger.Error("failed to start viewer", "error", err)
		return 1
	}
	if err := eng.Run(ctx); err != nil {
		logger.Error("viewer shutdown failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file, falling back to the defaults when it does not exist.
func loadConfig(path string, logger *slog.Logger) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}
