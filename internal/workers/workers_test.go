// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/models"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := NewWorkers(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic on empty workers list
	ws.Run()
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
}

func TestWorkers_Run_Order(t *testing.T) {
	order := []int{}

	// orderWorker records its index into the shared order slice
	newOrderWorker := func(id int) Worker {
		return &orderWorker{id: id, order: &order}
	}

	ws := NewWorkers(
		newOrderWorker(1),
		newOrderWorker(2),
		newOrderWorker(3),
	)
	ws.Run()

	expected := []int{1, 2, 3}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d]=%d, got %d", i, v, order[i])
		}
	}
}

func TestWorkers_Run_CalledOnce(t *testing.T) {
	w := &mockWorker{}
	ws := NewWorkers(w)

	ws.Run()

	if w.runCount != 1 {
		t.Errorf("expected Run to be called exactly once, got %d", w.runCount)
	}
}

func TestWorkers_Run_MultipleRuns(t *testing.T) {
	w := &mockWorker{}
	ws := NewWorkers(w)

	ws.Run()
	ws.Run()
	ws.Run()

	if w.runCount != 3 {
		t.Errorf("expected runCount=3 after 3 calls, got %d", w.runCount)
	}
}

// orderWorker is a helper that appends its ID to a shared slice on Run.
type orderWorker struct {
	id    int
	order *[]int
}

func (o *orderWorker) Run() {
	*o.order = append(*o.order, o.id)
}

// spyOrchestrator is a minimal SyncOrchestrator implementation that records
// Start calls and returns a scripted error.
type spyOrchestrator struct {
	startCalls int
	startCtx   context.Context
	startErr   error
}

func (s *spyOrchestrator) Start(ctx context.Context) error {
	s.startCalls++
	s.startCtx = ctx
	return s.startErr
}

func (s *spyOrchestrator) Stop()                          {}
func (s *spyOrchestrator) Sync(context.Context) error     { return nil }
func (s *spyOrchestrator) Refresh(context.Context, models.Window) error { return nil }
func (s *spyOrchestrator) PushPending(context.Context, models.ScanScope) (models.UploadReport, error) {
	return models.UploadReport{}, nil
}
func (s *spyOrchestrator) PendingCount(context.Context) (int, error) { return 0, nil }
func (s *spyOrchestrator) LastSync(context.Context) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (s *spyOrchestrator) Status(context.Context) models.SyncStatus     { return models.SyncStatus{} }
func (s *spyOrchestrator) ResumeWithToken(context.Context, string) error { return nil }

// spyJob is a minimal SyncJob implementation that records Start parameters.
type spyJob struct {
	startCalls int
	startCtx   context.Context
	interval   time.Duration
}

func (j *spyJob) Start(ctx context.Context, interval time.Duration) {
	j.startCalls++
	j.startCtx = ctx
	j.interval = interval
}

func (j *spyJob) Stop() {}

func TestEngineWorker_Run_StartsOrchestrator(t *testing.T) {
	orch := &spyOrchestrator{}
	ctx := context.Background()

	w := NewEngineWorker(ctx, orch, logger.Nop())
	w.Run()

	if orch.startCalls != 1 {
		t.Errorf("expected orchestrator Start to be called once, got %d", orch.startCalls)
	}
	if orch.startCtx != ctx {
		t.Error("expected orchestrator to receive the worker's context")
	}
}

func TestEngineWorker_Run_StartErrorDoesNotPanic(t *testing.T) {
	orch := &spyOrchestrator{startErr: context.Canceled}

	w := NewEngineWorker(context.Background(), orch, logger.Nop())

	// A failed engine start is logged, not propagated
	w.Run()

	if orch.startCalls != 1 {
		t.Errorf("expected orchestrator Start to be called once, got %d", orch.startCalls)
	}
}

func TestPeriodicSyncWorker_Run_StartsJob(t *testing.T) {
	job := &spyJob{}
	ctx := context.Background()

	w := NewPeriodicSyncWorker(ctx, job, 42*time.Millisecond)
	w.Run()

	if job.startCalls != 1 {
		t.Errorf("expected job Start to be called once, got %d", job.startCalls)
	}
	if job.interval != 42*time.Millisecond {
		t.Errorf("expected interval=42ms, got %v", job.interval)
	}
	if job.startCtx != ctx {
		t.Error("expected job to receive the worker's context")
	}
}
