package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-health-keeper/models"
)

// ProgressFunc receives upload progress as a wave advances: synced is the
// number of records acknowledged so far (monotonically non-decreasing),
// attempted is the wave size. Called after every completed upload, success
// or failure. Must be cheap and must not block.
type ProgressFunc func(synced, attempted int)

// RecordsService is the local CRUD surface the presentation layer writes
// through. Every write lands in the cache first; synchronization with the
// remote store is the orchestrator's business, except deletion, which is
// remote-first by design.
type RecordsService interface {
	// LogMeal validates the payload, assigns a client-side ID, and saves
	// the entry as a pending local write. No network call is made.
	LogMeal(ctx context.Context, at time.Time, meal models.MealPayload) (models.Record, error)

	// LogWater validates and saves a water intake entry as a pending
	// local write.
	LogWater(ctx context.Context, at time.Time, water models.WaterPayload) (models.Record, error)

	// LogWeight validates and saves a body-weight measurement as a
	// pending local write.
	LogWeight(ctx context.Context, at time.Time, weight models.WeightPayload) (models.Record, error)

	// Update replaces the payload and timestamp of an existing record,
	// resets it to the local state, and bumps its modification stamp so
	// the next push wave picks it up. Returns the stored record.
	Update(ctx context.Context, record models.Record) (models.Record, error)

	// Delete removes a record remote-first. Records never confirmed by
	// the remote are purged locally with no network call. Synced records
	// are hidden immediately (pending deletion), the remote delete is
	// attempted in the same call; acknowledgement purges the record,
	// failure reverts it to synced and returns the error.
	Delete(ctx context.Context, ref models.RecordRef) error

	// Day returns the visible records of one local day, sorted by
	// LoggedAt. Records pending deletion are excluded.
	Day(ctx context.Context, day time.Time) ([]models.Record, error)
}

// PendingScanner identifies the pending-write queue: the queue IS the set
// of records in the local sync state, a filtered view of the cache with no
// second persisted structure to drift out of sync.
type PendingScanner interface {
	// Scan returns every pending local write inside scope. Pure read.
	Scan(ctx context.Context, scope models.ScanScope) ([]models.Record, error)

	// PendingCount returns the number of pending local writes inside
	// scope (the UI badge number).
	PendingCount(ctx context.Context, scope models.ScanScope) (int, error)
}

// Uploader pushes pending records to the remote store in bounded
// concurrent waves.
type Uploader interface {
	// Upload pushes the given records with a fixed in-flight bound.
	// The wave start is persisted (local → uploading) before any network
	// call; after all groups finish, one atomic batch moves successes to
	// synced and failures back to local. One record's failure never
	// cancels or delays the others. progress may be nil.
	Upload(ctx context.Context, records []models.Record, progress ProgressFunc) (models.UploadReport, error)
}

// Reconciler folds an authoritative remote snapshot into the cache
// without destroying unconfirmed local work.
type Reconciler interface {
	// Reconcile merges the snapshot into the cache as one atomic batch:
	// remote wins for synced records, missing remote records are
	// inserted as synced, locally unconfirmed records are never touched,
	// and synced records absent from the snapshot are deleted
	// (tombstone-by-absence).
	Reconcile(ctx context.Context, snapshot models.SyncSnapshot) (models.MergeResult, error)
}

// SyncOrchestrator is the heart of the engine and the only component the
// presentation layer talks to for synchronization. It serializes pulls
// and pushes against each other, suspends on credential failures, and
// exposes the engine's observable state.
type SyncOrchestrator interface {
	// Start wires the reachability monitor's restored event to an
	// automatic push of all pending writes and marks the engine running.
	// Returns ErrAlreadyRunning on a second Start without a Stop.
	Start(ctx context.Context) error

	// Stop halts the reachability watch and rejects subsequent sync
	// operations with ErrStopped. Idempotent.
	Stop()

	// Sync performs one full cycle: refresh today's window, then push
	// all pending writes (automatic push, skipping records marked
	// permanently failed this session).
	Sync(ctx context.Context) error

	// Refresh pulls the remote snapshot for the window and reconciles it
	// into the cache. Concurrent refreshes of the same window collapse
	// into one flight.
	Refresh(ctx context.Context, window models.Window) error

	// PushPending scans the pending queue inside scope and uploads it.
	// A manual push retries even records marked permanently failed.
	PushPending(ctx context.Context, scope models.ScanScope) (models.UploadReport, error)

	// PendingCount returns the size of the pending queue.
	PendingCount(ctx context.Context) (int, error)

	// LastSync returns the timestamp of the last successful sync;
	// ok is false when none has completed yet.
	LastSync(ctx context.Context) (at time.Time, ok bool, err error)

	// Status reports the engine state, upload progress, pending count
	// and last-sync timestamp for the presentation layer.
	Status(ctx context.Context) models.SyncStatus

	// ResumeWithToken installs a fresh credential and lifts the
	// auth_required suspension.
	ResumeWithToken(ctx context.Context, token string) error
}

// SyncJob is a background worker that periodically runs a full sync.
type SyncJob interface {
	// Start launches the background sync goroutine. It syncs every
	// interval, defaulting to 5 minutes if interval is zero or negative.
	// Any previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
