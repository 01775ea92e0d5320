package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/hop/internal/config"
	"github.com/MrSnakeDoc/hop/internal/httpserver"
	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/MrSnakeDoc/hop/internal/scheduler"
	"github.com/MrSnakeDoc/hop/internal/sources"
	"github.com/MrSnakeDoc/hop/internal/version"
)

// App is the long-running server: HTTP API, background sync and import.
type App struct {
	cfg      *config.Config
	logger   logger.Logger
	core     *Core
	server   *httpserver.Server
	syncs    *scheduler.SyncScheduler
	importer *scheduler.ImportReloader
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	core, err := NewCore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: loggerClient,
		core:   core,
	}

	// Create manual sync trigger channel (nil offline: the endpoint answers 503)
	var syncTrigger chan struct{}
	if core.Online() {
		syncTrigger = make(chan struct{}, 1)
		a.syncs = scheduler.NewSyncScheduler(core.Sync, loggerClient, cfg.SyncInterval, syncTrigger)
	}

	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured, initializing import reloader",
			logger.String("file", cfg.ImportFile))
		a.importer = scheduler.NewImportReloader(
			cfg.ImportFile,
			sources.Load,
			core.Links,
			loggerClient,
			cfg.ImportInterval,
		)
	} else {
		loggerClient.Info("import file not configured, import disabled")
	}

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Links:         core.Links,
		Index:         core.Index,
		Notifier:      core.Notifier,
		SyncTrigger:   syncTrigger,
		Local:         core.DB,
		FallbackURL:   cfg.FallbackURL,
		RateBurst:     cfg.RateBurst,
		RatePerMinute: cfg.RatePerMin,
	}
	if core.Remote != nil {
		d.Remote = core.Remote
	}

	a.server = httpserver.New(cfg.ListenPort, d)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting hop v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("hop %s", version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.core.Close()

	// Start import reloader first so the startup sync sees imported links
	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start import reloader: %w", err)
		}
		a.logger.Info("import reloader started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	if a.syncs != nil {
		a.syncs.Start(ctx)
		a.logger.Info("sync scheduler started",
			logger.Duration("interval", a.cfg.SyncInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.syncs != nil {
		a.syncs.Stop()
	}
	if a.importer != nil {
		a.importer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// Flush whatever the last mutations left in memory
	if err := a.core.Saver.Save(shutdownCtx); err != nil {
		a.logger.Warn("final save failed", logger.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ hop stopped cleanly")
	return nil
}
