// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-health-keeper/internal/adapter"
	"github.com/MKhiriev/go-health-keeper/internal/config"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/netwatch"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/internal/utils"
	"github.com/MKhiriev/go-health-keeper/models"
)

type syncOrchestrator struct {
	meta     store.MetaRepository
	remote   adapter.RemoteAdapter
	scanner  PendingScanner
	uploader Uploader
	rec      Reconciler
	monitor  *netwatch.Monitor

	// syncMu serializes the cache-mutating phases (merge batches and push
	// waves) so a refresh never interleaves with an upload. It also guards
	// skip. Lock order: syncMu before mu, never the reverse.
	syncMu sync.Mutex

	// group collapses concurrent refreshes of the same window into one
	// remote fetch.
	group singleflight.Group

	// skip parks records that failed with a permanent remote rejection.
	// Automatic pushes leave them alone for the rest of the session; a
	// manual push retries them and success unparks them.
	skip map[string]struct{}

	// mu guards the externally visible engine state below.
	mu           sync.Mutex
	state        models.EngineState
	progress     float64
	lastErr      string
	authRequired bool
	started      bool
	stopped      bool
	runCancel    context.CancelFunc

	logger *logger.Logger
}

// NewSyncOrchestrator wires the engine together. An adapter without a
// bearer token starts suspended: every sync operation returns
// ErrAuthRequired until ResumeWithToken installs a credential, while the
// local CRUD surface keeps working untouched.
func NewSyncOrchestrator(meta store.MetaRepository, remote adapter.RemoteAdapter, scanner PendingScanner, uploader Uploader, reconciler Reconciler, syncCfg config.ClientSync, logger *logger.Logger) SyncOrchestrator {
	o := &syncOrchestrator{
		meta:     meta,
		remote:   remote,
		scanner:  scanner,
		uploader: uploader,
		rec:      reconciler,
		skip:     make(map[string]struct{}),
		state:    models.EngineIdle,
		logger:   logger,
	}
	if remote.Token() == "" {
		o.authRequired = true
		o.state = models.EngineAuthRequired
		logger.Warn().
			Str("func", "service.NewSyncOrchestrator").
			Msg("no bearer token configured, sync suspended until one is provided")
	}
	o.monitor = netwatch.NewMonitor(remote, o.pendingNow, syncCfg.ProbeInterval, logger)
	return o
}

// Start implements [SyncOrchestrator].
func (o *syncOrchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	// The run context outlives the caller's startup context: background
	// flushes stop on Stop, not when app initialization returns.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.started = true
	o.stopped = false
	o.runCancel = cancel
	o.mu.Unlock()

	o.monitor.Start(func() {
		flushCtx := utils.WithTrigger(runCtx, utils.TriggerReachability)
		if _, err := o.autoPush(flushCtx, models.ScopeAll()); err != nil {
			o.logger.Warn().Err(err).
				Str("func", "syncOrchestrator.Start").
				Msg("pending flush after connectivity restore failed")
		}
	})

	o.logger.Info().
		Str("func", "syncOrchestrator.Start").
		Msg("sync engine started")
	return nil
}

// Stop implements [SyncOrchestrator].
func (o *syncOrchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	cancel := o.runCancel
	o.runCancel = nil
	o.started = false
	o.stopped = true
	o.mu.Unlock()

	o.monitor.Stop()
	if cancel != nil {
		cancel()
	}

	o.logger.Info().
		Str("func", "syncOrchestrator.Stop").
		Msg("sync engine stopped")
}

// Sync implements [SyncOrchestrator]. The pull runs first so the push
// wave works against a reconciled cache; a failed pull aborts the cycle
// before any upload.
func (o *syncOrchestrator) Sync(ctx context.Context) error {
	if err := o.guard(); err != nil {
		return err
	}

	trigger, ok := utils.GetTriggerFromContext(ctx)
	if !ok {
		trigger = utils.TriggerManual
	}
	o.logger.Info().
		Str("func", "syncOrchestrator.Sync").
		Str("trigger", trigger).
		Msg("sync cycle started")

	if err := o.Refresh(ctx, models.DayWindow(time.Now())); err != nil {
		return err
	}

	_, err := o.autoPush(ctx, models.ScopeAll())
	return err
}

// Refresh implements [SyncOrchestrator].
func (o *syncOrchestrator) Refresh(ctx context.Context, window models.Window) error {
	if err := o.guard(); err != nil {
		return err
	}

	_, err, _ := o.group.Do(window.String(), func() (any, error) {
		return nil, o.refresh(ctx, window)
	})
	return err
}

func (o *syncOrchestrator) refresh(ctx context.Context, window models.Window) error {
	o.setState(models.EngineSyncing)

	// A failed fetch aborts before the merge: the cache stays exactly as
	// it was, never half-refreshed.
	snapshot, err := o.remote.FetchWindow(ctx, window)
	if err != nil {
		return o.fail(fmt.Errorf("fetch window %s: %w", window, err))
	}

	o.syncMu.Lock()
	result, err := o.rec.Reconcile(ctx, snapshot)
	o.syncMu.Unlock()
	if err != nil {
		return o.fail(fmt.Errorf("reconcile window %s: %w", window, err))
	}

	o.stampLastSync(ctx)
	o.setIdle()

	o.logger.Info().
		Str("func", "syncOrchestrator.refresh").
		Str("window", window.String()).
		Bool("changed", result.Changed()).
		Msg("window refreshed")
	return nil
}

// PushPending implements [SyncOrchestrator].
func (o *syncOrchestrator) PushPending(ctx context.Context, scope models.ScanScope) (models.UploadReport, error) {
	return o.push(ctx, scope, false)
}

// autoPush is the scheduled variant of PushPending: it honors the
// session parking lot instead of retrying known-rejected records.
func (o *syncOrchestrator) autoPush(ctx context.Context, scope models.ScanScope) (models.UploadReport, error) {
	return o.push(ctx, scope, true)
}

func (o *syncOrchestrator) push(ctx context.Context, scope models.ScanScope, skipParked bool) (models.UploadReport, error) {
	if err := o.guard(); err != nil {
		return models.UploadReport{}, err
	}

	o.syncMu.Lock()
	defer o.syncMu.Unlock()

	pending, err := o.scanner.Scan(ctx, scope)
	if err != nil {
		return models.UploadReport{}, o.fail(err)
	}

	if skipParked && len(o.skip) > 0 {
		kept := pending[:0]
		for _, rec := range pending {
			if _, parked := o.skip[rec.ID]; !parked {
				kept = append(kept, rec)
			}
		}
		pending = kept
	}

	if len(pending) == 0 {
		o.logger.Debug().
			Str("func", "syncOrchestrator.push").
			Msg("pending queue empty, nothing to push")
		return models.UploadReport{Outcomes: map[string]models.UploadOutcome{}}, nil
	}

	o.setState(models.EngineUploading)

	report, err := o.uploader.Upload(ctx, pending, o.onProgress)
	if err != nil {
		return report, o.fail(fmt.Errorf("push pending: %w", err))
	}

	var unauthorized error
	for id, outcome := range report.Outcomes {
		switch {
		case outcome.OK:
			delete(o.skip, id)
		case outcome.Permanent:
			o.skip[id] = struct{}{}
		}
		if outcome.Err != nil && errors.Is(outcome.Err, adapter.ErrUnauthorized) {
			unauthorized = outcome.Err
		}
	}
	if unauthorized != nil {
		return report, o.fail(fmt.Errorf("push pending: %w", unauthorized))
	}

	if report.Synced > 0 {
		o.stampLastSync(ctx)
	}
	o.setIdle()
	return report, nil
}

// PendingCount implements [SyncOrchestrator].
func (o *syncOrchestrator) PendingCount(ctx context.Context) (int, error) {
	return o.scanner.PendingCount(ctx, models.ScopeAll())
}

// LastSync implements [SyncOrchestrator].
func (o *syncOrchestrator) LastSync(ctx context.Context) (time.Time, bool, error) {
	return o.meta.LastSync(ctx)
}

// Status implements [SyncOrchestrator]. Reads never block behind an
// in-flight sync: the pending badge stays responsive mid-wave.
func (o *syncOrchestrator) Status(ctx context.Context) models.SyncStatus {
	o.mu.Lock()
	status := models.SyncStatus{
		State:     o.state,
		Progress:  o.progress,
		LastError: o.lastErr,
	}
	o.mu.Unlock()

	if count, err := o.scanner.PendingCount(ctx, models.ScopeAll()); err == nil {
		status.PendingCount = count
	} else {
		o.logger.Warn().Err(err).
			Str("func", "syncOrchestrator.Status").
			Msg("pending count unavailable")
	}
	if at, ok, err := o.meta.LastSync(ctx); err == nil && ok {
		status.LastSync = &at
	}
	return status
}

// ResumeWithToken implements [SyncOrchestrator].
func (o *syncOrchestrator) ResumeWithToken(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty bearer token", ErrAuthRequired)
	}

	o.remote.SetToken(token)

	o.mu.Lock()
	o.authRequired = false
	if o.state == models.EngineAuthRequired {
		o.state = models.EngineIdle
	}
	o.lastErr = ""
	o.mu.Unlock()

	o.logger.Info().
		Str("func", "syncOrchestrator.ResumeWithToken").
		Msg("credential installed, sync resumed")
	return nil
}

// guard rejects sync operations while the engine is stopped or suspended
// on a missing/rejected credential.
func (o *syncOrchestrator) guard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}
	if o.authRequired {
		return fmt.Errorf("%w: bearer token missing or rejected", ErrAuthRequired)
	}
	return nil
}

// fail records a sync failure in the visible state. Credential
// rejections suspend the engine instead: auth_required is sticky until
// ResumeWithToken.
func (o *syncOrchestrator) fail(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if errors.Is(err, adapter.ErrUnauthorized) {
		o.authRequired = true
		o.state = models.EngineAuthRequired
		o.lastErr = err.Error()
		o.logger.Warn().Err(err).
			Str("func", "syncOrchestrator.fail").
			Msg("credential rejected, sync suspended")
		return fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}

	o.state = models.EngineError
	o.lastErr = err.Error()
	return err
}

func (o *syncOrchestrator) setState(state models.EngineState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.authRequired {
		return
	}
	o.state = state
}

func (o *syncOrchestrator) setIdle() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.authRequired {
		return
	}
	o.state = models.EngineIdle
	o.lastErr = ""
	o.progress = 0
}

func (o *syncOrchestrator) onProgress(synced, attempted int) {
	o.mu.Lock()
	if attempted > 0 {
		o.progress = float64(synced) / float64(attempted)
	}
	o.mu.Unlock()
}

// stampLastSync is best effort: a failed stamp is worth a warning, not a
// failed sync.
func (o *syncOrchestrator) stampLastSync(ctx context.Context) {
	if err := o.meta.SetLastSync(ctx, time.Now().UTC()); err != nil {
		o.logger.Warn().Err(err).
			Str("func", "syncOrchestrator.stampLastSync").
			Msg("last-sync stamp not persisted")
	}
}

// pendingNow feeds the reachability monitor. Errors count as zero: a
// flush suppressed by a transient read failure rides the next probe.
func (o *syncOrchestrator) pendingNow(ctx context.Context) int {
	count, err := o.scanner.PendingCount(ctx, models.ScopeAll())
	if err != nil {
		return 0
	}
	return count
}
