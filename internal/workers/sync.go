// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/service"
)

// engineWorker starts the synchronization engine: the reachability watch
// and the connectivity-triggered flushes of the pending queue.
type engineWorker struct {
	ctx          context.Context
	orchestrator service.SyncOrchestrator
	logger       *logger.Logger
}

// NewEngineWorker returns a worker that starts the sync engine on Run.
// Run takes no arguments, so the lifetime context is captured up front.
func NewEngineWorker(ctx context.Context, orchestrator service.SyncOrchestrator, logger *logger.Logger) Worker {
	return &engineWorker{ctx: ctx, orchestrator: orchestrator, logger: logger}
}

// Run starts the orchestrator. A failed start is logged rather than
// propagated: the rest of the client keeps working from the local cache.
func (w *engineWorker) Run() {
	if err := w.orchestrator.Start(w.ctx); err != nil {
		w.logger.Warn().Err(err).Msg("sync engine start failed")
	}
}

// periodicSyncWorker starts the background job that runs a full sync on a
// fixed interval.
type periodicSyncWorker struct {
	ctx      context.Context
	job      service.SyncJob
	interval time.Duration
}

// NewPeriodicSyncWorker returns a worker that starts the periodic sync job
// on Run with the given interval between runs.
func NewPeriodicSyncWorker(ctx context.Context, job service.SyncJob, interval time.Duration) Worker {
	return &periodicSyncWorker{ctx: ctx, job: job, interval: interval}
}

// Run starts the job's ticker goroutine and returns immediately.
func (w *periodicSyncWorker) Run() {
	w.job.Start(w.ctx, w.interval)
}
