package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
)

// metaKeyLastSync is the sync_meta key that holds the timestamp of the last
// fully successful sync, stored as RFC 3339.
const metaKeyLastSync = "last_sync"

// metaRepository is the SQLite-backed implementation of [MetaRepository]
// over the sync_meta key-value table.
type metaRepository struct {
	*DB
	logger *logger.Logger
}

// NewMetaRepository constructs a [MetaRepository] backed by the provided
// database connection and logger.
func NewMetaRepository(db *DB, logger *logger.Logger) MetaRepository {
	return &metaRepository{
		DB:     db,
		logger: logger,
	}
}

func (m *metaRepository) LastSync(ctx context.Context) (time.Time, bool, error) {
	log := logger.FromContext(ctx)

	var value string
	err := m.DB.QueryRowContext(ctx, getMetaValue, metaKeyLastSync).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		// No sync has completed yet.
		return time.Time{}, false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "metaRepository.LastSync").
			Msg("failed to read last sync timestamp")
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	at, parseErr := time.Parse(time.RFC3339Nano, value)
	if parseErr != nil {
		log.Err(parseErr).
			Str("func", "metaRepository.LastSync").
			Str("value", value).
			Msg("failed to parse stored last sync timestamp")
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrScanningRow, parseErr)
	}

	return at, true, nil
}

func (m *metaRepository) SetLastSync(ctx context.Context, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := m.DB.ExecContext(ctx, upsertMetaValue, metaKeyLastSync, at.Format(time.RFC3339Nano)); err != nil {
		log.Err(err).
			Str("func", "metaRepository.SetLastSync").
			Time("at", at).
			Msg("failed to persist last sync timestamp")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
