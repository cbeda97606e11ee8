package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-health-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository is the low-level repository over the on-device record
// cache. One implementation covers all three record kinds; every method
// routes to the kind's table.
type RecordRepository interface {
	// Query returns the records inside scope across all kind tables,
	// optionally filtered by sync state. No implicit ordering: callers
	// sort when they need an order.
	Query(ctx context.Context, scope models.ScanScope, states ...models.SyncState) ([]models.Record, error)

	// Get fetches a single record by kind and id. Returns [ErrNotFound]
	// when no such record exists.
	Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error)

	// Save upserts the given records one by one: insert when the id is
	// new, full-row overwrite when it exists.
	Save(ctx context.Context, records ...models.Record) error

	// ApplyBatch applies the change set inside a single transaction:
	// either all of it lands or none of it does. State transitions are
	// conditional on the expected current state, so a record deleted or
	// mutated mid-flight is skipped rather than corrupted.
	ApplyBatch(ctx context.Context, change models.ChangeSet) error

	// CountByState counts records in the given sync state inside scope
	// across all kind tables.
	CountByState(ctx context.Context, state models.SyncState, scope models.ScanScope) (int, error)

	// ReleaseInterrupted rolls records stranded by a crash back to a
	// stable state: uploading becomes local, pending_deletion becomes
	// synced. Returns the number of released records.
	ReleaseInterrupted(ctx context.Context) (int64, error)
}

// MetaRepository stores engine metadata in the sync_meta key-value table.
type MetaRepository interface {
	// LastSync returns the timestamp of the last fully successful sync.
	// ok is false when no sync has completed yet.
	LastSync(ctx context.Context) (at time.Time, ok bool, err error)

	// SetLastSync records the timestamp of a completed sync.
	SetLastSync(ctx context.Context, at time.Time) error
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
