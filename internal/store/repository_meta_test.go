package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
)

const (
	selectMetaSQL = `SELECT value
		FROM sync_meta
		WHERE key = ?;`

	upsertMetaSQL = `INSERT INTO sync_meta (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)

func TestLastSync(t *testing.T) {
	t.Run("success: stored timestamp round-trips", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		at := time.Date(2026, 3, 14, 18, 45, 12, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(selectMetaSQL)).
			WithArgs("last_sync").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(at.Format(time.RFC3339Nano)))

		got, ok, err := repo.LastSync(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, at, got.UTC())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: no sync recorded yet", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		mock.ExpectQuery(regexp.QuoteMeta(selectMetaSQL)).
			WithArgs("last_sync").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, ok, err := repo.LastSync(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: query fails", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		mock.ExpectQuery(regexp.QuoteMeta(selectMetaSQL)).
			WillReturnError(errors.New("database is locked"))

		_, ok, err := repo.LastSync(ctx)
		require.Error(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("error: stored value is not a timestamp", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		mock.ExpectQuery(regexp.QuoteMeta(selectMetaSQL)).
			WithArgs("last_sync").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("not-a-timestamp"))

		_, ok, err := repo.LastSync(ctx)
		require.Error(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrScanningRow)
	})
}

func TestSetLastSync(t *testing.T) {
	t.Run("success: persists RFC3339 value", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		at := time.Date(2026, 3, 14, 18, 45, 12, 0, time.UTC)
		mock.ExpectExec(regexp.QuoteMeta(upsertMetaSQL)).
			WithArgs("last_sync", at.Format(time.RFC3339Nano)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetLastSync(ctx, at))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: exec fails", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMetaRepository(newDBFromSQL(db), logger.Nop())
		ctx := testContext()

		mock.ExpectExec(regexp.QuoteMeta(upsertMetaSQL)).
			WillReturnError(errors.New("attempt to write a readonly database"))

		err := repo.SetLastSync(ctx, time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}
