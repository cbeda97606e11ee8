// Package netwatch observes remote reachability and turns it into
// edge-triggered events.
//
// The [Monitor] probes the remote on an interval and remembers the last
// observed state. It fires its callback exactly when connectivity
// transitions from unavailable to available while unsynchronized local
// writes are waiting, so the sync engine can flush the pending queue the
// moment the network comes back instead of waiting for the next scheduled
// sync.
package netwatch

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
)

// Prober answers a single question: is the remote reachable right now?
// Any failure to determine connectivity must report false.
type Prober interface {
	Ping(ctx context.Context) bool
}

// PendingFunc reports how many local writes are waiting to be pushed.
type PendingFunc func(ctx context.Context) int

// Monitor is an interval-driven reachability watcher. It is idle until
// Start is called and can be restarted after Stop.
type Monitor struct {
	prober   Prober
	pending  PendingFunc
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewMonitor creates a Monitor that probes with prober every interval and
// consults pending before firing. If interval is zero or negative it
// defaults to 30 seconds.
func NewMonitor(prober Prober, pending PendingFunc, interval time.Duration, logger *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{prober: prober, pending: pending, interval: interval, logger: logger}
}

// Start stops any previously running watch, then launches a background
// goroutine that probes the remote every interval. The first probe only
// establishes the baseline state and never fires; after that, onRestored
// is invoked on every unavailable-to-available transition observed while
// the pending probe reports at least one waiting write. The goroutine
// exits when Stop is called.
func (m *Monitor) Start(onRestored func()) {
	m.Stop()

	m.mu.Lock()
	watchCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		wasConnected := m.prober.Ping(watchCtx)
		m.logger.Debug().
			Str("func", "Monitor.Start").
			Bool("connected", wasConnected).
			Msg("reachability baseline established")

		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-t.C:
				connected := m.prober.Ping(watchCtx)
				if connected && !wasConnected {
					m.onRestored(watchCtx, onRestored)
				}
				wasConnected = connected
			}
		}
	}()
}

// onRestored reacts to one unavailable-to-available edge. The callback is
// skipped when nothing is waiting to be pushed.
func (m *Monitor) onRestored(ctx context.Context, callback func()) {
	pending := 0
	if m.pending != nil {
		pending = m.pending(ctx)
	}

	if pending <= 0 {
		m.logger.Debug().
			Str("func", "Monitor.onRestored").
			Msg("connectivity restored, nothing pending")
		return
	}

	m.logger.Info().
		Str("func", "Monitor.onRestored").
		Int("pending", pending).
		Msg("connectivity restored, flushing pending writes")

	if callback != nil {
		callback()
	}
}

// Stop cancels the watch goroutine and blocks until it has fully exited.
// Safe to call repeatedly and without a prior Start (no-op in that case).
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}
