// Package app provides the application bootstrap and initialization logic.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dherrin/packetd/internal/core/config"
	"github.com/dherrin/packetd/internal/core/lifecycle"
	"github.com/dherrin/packetd/internal/core/logger"
	compressext "github.com/dherrin/packetd/internal/extension/compress"
	metricsext "github.com/dherrin/packetd/internal/extension/metrics"
	"github.com/dherrin/packetd/internal/extension/ratelimit"
	"github.com/dherrin/packetd/internal/handlers"
	"github.com/dherrin/packetd/pkg/dgram"
)

// App represents the main application instance
type App struct {
	cfgManager config.Manager
	cfg        *config.Config
	logger     logger.Logger
	lifecycle  lifecycle.Lifecycle
	transport  dgram.Transport
	server     *dgram.Server
	metricsSrv *http.Server
	serveErr   chan error
}

// New creates a new App instance with the given config file path
func New(cfgFile string) (*App, error) {
	app := &App{serveErr: make(chan error, 1)}

	// 1. Load Config
	if err := app.initConfig(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to init config: %w", err)
	}

	// 2. Init Logger
	if err := app.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	// 3. Init Lifecycle
	app.lifecycle = lifecycle.NewLifecycle()

	return app, nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Run starts the application and blocks until shutdown or a fatal dispatch
// fault.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting packetd")

	// A dispatch fault tears the whole process down; cancel unblocks
	// RunAndWait so shutdown hooks still run.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.registerConfigWatcher()

	if err := a.initServer(cancel); err != nil {
		return err
	}
	a.initMetricsServer()

	if err := lifecycle.RunAndWait(ctx, a.lifecycle); err != nil {
		a.logger.Error("shutdown error", logger.Any("error", err))
	}

	a.cleanup()

	// Tell a crash apart from a clean signal-driven exit.
	select {
	case err := <-a.serveErr:
		a.logger.Error("packetd stopped on fault", logger.Any("error", err))
		return err
	default:
		a.logger.Info("packetd stopped")
		return nil
	}
}

// initConfig loads the configuration
func (a *App) initConfig(cfgFile string) error {
	a.cfgManager = config.NewManager(cfgFile)
	if err := a.cfgManager.Load(); err != nil {
		return err
	}
	a.cfg = a.cfgManager.GetConfig()
	return nil
}

// initLogger builds the zap-backed logger from config
func (a *App) initLogger() error {
	log, err := logger.NewZapLogger(logger.ParseLevel(a.cfg.Log.Level), a.cfg.Log.Path)
	if err != nil {
		return err
	}
	a.logger = log
	return nil
}

// registerConfigWatcher applies live log-level changes
func (a *App) registerConfigWatcher() {
	a.cfgManager.Watch(func(newCfg *config.Config) {
		a.logger.Info("config reloaded", logger.Any("log_level", newCfg.Log.Level))
		a.logger.SetLevel(logger.ParseLevel(newCfg.Log.Level))
	})
}

// buildRegistry assembles the extension pipeline and application handlers in
// declaration order: metrics and rate limiting first, payload decompression
// next, the conversation switch last so it stays the terminal routing step.
func (a *App) buildRegistry() (*dgram.Registry, error) {
	b := dgram.NewBuilder()

	if a.cfg.Metrics.Enabled {
		b.Use(metricsext.New(prometheus.DefaultRegisterer))
	}
	if a.cfg.RateLimit.Enabled {
		b.Use(ratelimit.New(rate.Limit(a.cfg.RateLimit.Limit), a.cfg.RateLimit.Burst))
	}
	if a.cfg.Compress.Enabled {
		b.Use(compressext.New())
	}
	handlers.Register(b, a.logger)

	return b.Build()
}

// initServer binds the transport and hooks the dispatch loop into the
// lifecycle
func (a *App) initServer(cancel context.CancelFunc) error {
	reg, err := a.buildRegistry()
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	rng, err := a.cfg.Server.WorkerRange()
	if err != nil {
		return err
	}

	transport, err := dgram.Bind(a.cfg.Server.Addr)
	if err != nil {
		return err
	}
	a.transport = transport

	a.server = dgram.NewServer(transport, reg,
		dgram.WithLogger(a.logger.Unwrap()),
		dgram.WithWorkers(rng),
		dgram.WithReadBuffer(a.cfg.Server.ReadBuffer),
	)

	a.lifecycle.Append(lifecycle.Hook{
		Name: "dispatch-server",
		OnStart: func(context.Context) error {
			go func() {
				if err := a.server.Serve(); err != nil {
					a.serveErr <- err
				}
				cancel()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			return a.transport.Close()
		},
	})
	return nil
}

// initMetricsServer exposes /metrics when enabled
func (a *App) initMetricsServer() {
	if !a.cfg.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsSrv = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.lifecycle.Append(lifecycle.Hook{
		Name: "metrics-server",
		OnStart: func(context.Context) error {
			go func() {
				if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.logger.Error("metrics server error", logger.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return a.metricsSrv.Shutdown(ctx)
		},
	})
}

// cleanup performs cleanup operations on shutdown
func (a *App) cleanup() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
