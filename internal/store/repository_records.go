package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/models"
)

const (
	// applyBatchAttempts bounds how often a batch is re-run after a
	// retryable driver error (SQLITE_BUSY and friends).
	applyBatchAttempts = 3

	// busyRetryDelay is the base pause between batch attempts.
	busyRetryDelay = 50 * time.Millisecond
)

// recordRepository is the SQLite-backed implementation of [RecordRepository].
// It executes all record operations against the three kind tables using the
// embedded [*DB] connection.
//
// All writes funnel through writeMu: SQLite allows a single writer at a
// time, and ordering our own transactions keeps the busy handler out of the
// hot path.
type recordRepository struct {
	*DB
	logger *logger.Logger

	writeMu sync.Mutex
}

// NewRecordRepository constructs a [RecordRepository] backed by the provided
// database connection and logger.
//
// The logger parameter is stored for fallback logging; most methods prefer
// the context-scoped logger obtained via [logger.FromContext].
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) Query(ctx context.Context, scope models.ScanScope, states ...models.SyncState) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	results := make([]models.Record, 0, 32)

	for _, kind := range models.Kinds() {
		records, err := r.queryKind(ctx, kind, scope, states...)
		if err != nil {
			log.Err(err).
				Str("func", "recordRepository.Query").
				Str("kind", string(kind)).
				Msg("failed to query records")
			return nil, err
		}
		results = append(results, records...)
	}

	return results, nil
}

func (r *recordRepository) queryKind(ctx context.Context, kind models.RecordKind, scope models.ScanScope, states ...models.SyncState) ([]models.Record, error) {
	query, args, err := buildSelectRecordsQuery(kind, scope, states...)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 16)

	for rows.Next() {
		record, scanErr := scanRecord(rows, kind)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

func (r *recordRepository) Get(ctx context.Context, kind models.RecordKind, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectRecordByIDQuery(kind, id)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("kind", string(kind)).
			Str("id", id).
			Msg("failed to create query")
		return models.Record{}, err
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	if rowErr := row.Err(); rowErr != nil {
		log.Err(rowErr).
			Str("func", "recordRepository.Get").
			Str("kind", string(kind)).
			Str("id", id).
			Msg("failed to execute query for record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingQuery, rowErr)
	}

	record, err := scanRecord(row, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
		}
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("kind", string(kind)).
			Str("id", id).
			Msg("failed to scan record row")
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

func (r *recordRepository) Save(ctx context.Context, records ...models.Record) error {
	log := logger.FromContext(ctx)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	for _, record := range records {
		query, args, err := buildUpsertRecordQuery(record)
		if err != nil {
			log.Err(err).
				Str("func", "recordRepository.Save").
				Str("id", record.ID).
				Msg("failed to create upsert query")
			return err
		}

		if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "recordRepository.Save").
				Str("kind", string(record.Kind)).
				Str("id", record.ID).
				Msg("failed to execute upsert for record")
			return fmt.Errorf("%w: record id=%s: %w", ErrExecutingStatement, record.ID, err)
		}
	}

	return nil
}

func (r *recordRepository) ApplyBatch(ctx context.Context, change models.ChangeSet) error {
	log := logger.FromContext(ctx)

	if change.Empty() {
		return nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var err error
	for attempt := 1; attempt <= applyBatchAttempts; attempt++ {
		err = r.applyBatchTx(ctx, change)
		if err == nil {
			return nil
		}
		if r.errorClassificator == nil || r.errorClassificator.Classify(err) != Retryable {
			return err
		}
		log.Warn().
			Str("func", "recordRepository.ApplyBatch").
			Int("attempt", attempt).
			Msg("retrying batch after retryable database error")
		time.Sleep(time.Duration(attempt) * busyRetryDelay)
	}

	return err
}

// applyBatchTx runs one attempt of the change set inside a transaction.
func (r *recordRepository) applyBatchTx(ctx context.Context, change models.ChangeSet) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.applyBatchTx").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range change.Upserts {
		query, args, buildErr := buildUpsertRecordQuery(record)
		if buildErr != nil {
			return buildErr
		}
		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			log.Err(execErr).
				Str("func", "recordRepository.applyBatchTx").
				Str("kind", string(record.Kind)).
				Str("id", record.ID).
				Msg("failed to upsert record in batch")
			return fmt.Errorf("%w: upsert id=%s: %w", ErrExecutingStatement, record.ID, execErr)
		}
	}

	for _, ref := range change.Deletes {
		query, args, buildErr := buildDeleteRecordQuery(ref)
		if buildErr != nil {
			return buildErr
		}
		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			log.Err(execErr).
				Str("func", "recordRepository.applyBatchTx").
				Str("kind", string(ref.Kind)).
				Str("id", ref.ID).
				Msg("failed to delete record in batch")
			return fmt.Errorf("%w: delete id=%s: %w", ErrExecutingStatement, ref.ID, execErr)
		}
	}

	for _, transition := range change.Transitions {
		query, args, buildErr := buildTransitionQuery(transition)
		if buildErr != nil {
			return buildErr
		}
		result, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "recordRepository.applyBatchTx").
				Str("kind", string(transition.Ref.Kind)).
				Str("id", transition.Ref.ID).
				Msg("failed to transition record state in batch")
			return fmt.Errorf("%w: transition id=%s: %w", ErrExecutingStatement, transition.Ref.ID, execErr)
		}

		// Zero affected rows means the record was deleted or mutated
		// after the transition was planned. That is expected: skip it.
		if affected, raErr := result.RowsAffected(); raErr == nil && affected == 0 {
			log.Debug().
				Str("func", "recordRepository.applyBatchTx").
				Str("id", transition.Ref.ID).
				Str("from", string(transition.From)).
				Str("to", string(transition.To)).
				Msg("state transition skipped, record moved on")
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "recordRepository.applyBatchTx").
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (r *recordRepository) CountByState(ctx context.Context, state models.SyncState, scope models.ScanScope) (int, error) {
	log := logger.FromContext(ctx)

	total := 0

	for _, kind := range models.Kinds() {
		query, args, err := buildCountByStateQuery(kind, state, scope)
		if err != nil {
			log.Err(err).
				Str("func", "recordRepository.CountByState").
				Str("kind", string(kind)).
				Msg("failed to create count query")
			return 0, err
		}

		var count int
		if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			log.Err(err).
				Str("func", "recordRepository.CountByState").
				Str("kind", string(kind)).
				Str("state", string(state)).
				Msg("failed to count records by state")
			return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		total += count
	}

	return total, nil
}

func (r *recordRepository) ReleaseInterrupted(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ReleaseInterrupted").
			Msg("failed to begin transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		from models.SyncState
		to   models.SyncState
	}{
		{from: models.StateUploading, to: models.StateLocal},
		{from: models.StatePendingDeletion, to: models.StateSynced},
	}

	var released int64

	for _, kind := range models.Kinds() {
		for _, step := range steps {
			query, args, buildErr := buildReleaseQuery(kind, step.from, step.to)
			if buildErr != nil {
				return 0, buildErr
			}

			result, execErr := tx.ExecContext(ctx, query, args...)
			if execErr != nil {
				log.Err(execErr).
					Str("func", "recordRepository.ReleaseInterrupted").
					Str("kind", string(kind)).
					Str("from", string(step.from)).
					Msg("failed to release interrupted records")
				return 0, fmt.Errorf("%w: release %s: %w", ErrExecutingStatement, kind, execErr)
			}

			if affected, raErr := result.RowsAffected(); raErr == nil {
				released += affected
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "recordRepository.ReleaseInterrupted").
			Msg("failed to commit transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	if released > 0 {
		log.Info().
			Str("func", "recordRepository.ReleaseInterrupted").
			Int64("released", released).
			Msg("released records interrupted mid-sync")
	}

	return released, nil
}

// scanRecord reads one row in recordColumns order into a Record of the given
// kind. Works for both *sql.Row and *sql.Rows.
func scanRecord(row interface{ Scan(dest ...any) error }, kind models.RecordKind) (models.Record, error) {
	var record models.Record
	var payload []byte

	err := row.Scan(
		&record.ID,
		&record.LoggedAt,
		&payload,
		&record.SyncState,
		&record.LastModifiedLocally,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return models.Record{}, err
	}

	record.Kind = kind
	record.Payload = json.RawMessage(payload)

	return record, nil
}
