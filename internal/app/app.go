package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-psafe-cache/internal/backup"
	"github.com/MKhiriev/go-psafe-cache/internal/codec"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/internal/service"
	"github.com/MKhiriev/go-psafe-cache/internal/store"
	"github.com/MKhiriev/go-psafe-cache/internal/workers"
)

// App owns the store connection, the worker pool and the services built on
// them.
type App struct {
	Services *service.Services

	db        *store.DB
	pool      *workers.Pool
	scheduler *workers.Scheduler
	cfg       *config.StructuredConfig
	logger    *logger.Logger
}

// New connects to the store and builds the services. Call Close when done.
func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("error connecting to store: %w", err)
	}

	backuper, err := backup.NewBackuper(ctx, cfg.Backup, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating backuper: %w", err)
	}

	c := codec.NewKDBXCodec(codec.KDBXOptions{
		AppName:     cfg.App.Name,
		LockTimeout: cfg.App.LockTimeout,
	}, log)
	pool := workers.NewPool(cfg.Workers.PoolSize, log)

	a := &App{
		Services:  service.NewServices(store.NewRepositories(db, log), c, backuper, pool, cfg.App, log),
		db:        db,
		pool:      pool,
		scheduler: workers.NewScheduler(log),
		cfg:       cfg,
		logger:    log,
	}
	a.schedule()
	return a, nil
}

// Migrate brings the store schema up to date.
func (a *App) Migrate() error {
	return a.db.Migrate()
}

func (a *App) schedule() {
	w := a.cfg.Workers
	refresh := a.Services.RefreshService

	a.scheduler.Every("refresh-by-timestamp", w.RefreshByTimestampInterval, func(ctx context.Context) error {
		_, err := refresh.RefreshByTimestamp(ctx)
		return err
	})
	a.scheduler.Every("refresh-quick", w.RefreshQuickInterval, func(ctx context.Context) error {
		_, err := refresh.RefreshQuick(ctx, w.RefreshQuickBatch)
		return err
	})
	a.scheduler.Every("refresh-full", w.RefreshFullInterval, func(ctx context.Context) error {
		_, err := refresh.RefreshFull(ctx)
		return err
	})
	a.scheduler.Every("discovery", w.DiscoveryInterval, func(ctx context.Context) error {
		_, err := a.Services.ContainerService.DiscoverAll(ctx)
		return err
	})
}

// Serve runs the periodic tasks until ctx is done or the process receives
// SIGTERM, SIGINT or SIGQUIT.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	background := workers.NewWorkers(a.scheduler)
	a.logger.Info().Msg("launching periodic tasks")
	background.Start(ctx)

	<-ctx.Done()

	background.Stop()
	a.logger.Info().Msg("periodic tasks stopped gracefully")
	return nil
}

// Close waits for running jobs and closes the store.
func (a *App) Close() error {
	a.pool.Close()
	return a.db.Close()
}
