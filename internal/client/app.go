// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-health-keeper/internal/config"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/service"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/internal/utils"
	"github.com/MKhiriev/go-health-keeper/internal/workers"
)

// App is the on-device agent: local storage, the sync engine, and its
// background workers bound to one process lifecycle.
type App struct {
	services *service.Services
	storages *store.ClientStorages
	syncCfg  config.ClientSync
	logger   *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp assembles the agent runtime from already constructed services
// and storages.
func NewApp(services *service.Services, storages *store.ClientStorages, syncCfg config.ClientSync, logger *logger.Logger) *App {
	return &App{
		services: services,
		storages: storages,
		syncCfg:  syncCfg,
		logger:   logger,
	}
}

// Run starts the agent and blocks until an interrupt or termination
// signal arrives. Startup order: release records stranded by a previous
// crash, start the engine workers, then kick off a best-effort initial
// sync.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	released, err := a.storages.RecordRepository.ReleaseInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("release interrupted records: %w", err)
	}
	if released > 0 {
		a.logger.Info().Int64("records", released).Msg("recovered records from interrupted shutdown")
	}

	workers.NewWorkers(
		workers.NewEngineWorker(ctx, a.services.Orchestrator, a.logger),
		workers.NewPeriodicSyncWorker(ctx, a.services.SyncJob, a.syncCfg.Interval),
	).Run()

	// стартовая синхронизация не обязана удаться: агент работает из кэша
	if err := a.services.Orchestrator.Sync(utils.WithTrigger(ctx, utils.TriggerStartup)); err != nil {
		a.logger.Warn().Err(err).Msg("initial sync failed, serving from local cache")
	}

	<-ctx.Done()
	a.logger.Info().Msg("shutdown signal received, stopping sync engine")

	a.services.SyncJob.Stop()
	a.services.Orchestrator.Stop()

	return nil
}
