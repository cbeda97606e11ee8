package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify]
// and [SQLiteErrorClassifier.Classify]. It indicates whether a failed database
// operation should be retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	// This is the default classification for unrecognised errors, constraint
	// violations, syntax errors, and corrupted databases.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if attempted
	// again (e.g. after a concurrent writer releases the database lock).
	Retryable
)

// SQLiteErrorClassifier implements [ErrorClassificator] for SQLite.
// It inspects the result code returned by the go-sqlite3 driver and maps it
// to a [ErrorClassification] value.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier] ready for use.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator]. It attempts to unwrap err as a
// sqlite3.Error and delegates to [ClassifySQLiteError]. If err is nil or is
// not an SQLite driver error, [NonRetryable] is returned.
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	// Attempt to unwrap to a sqlite3.Error.
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return ClassifySQLiteError(sqliteErr)
	}

	// Default: treat unrecognised errors as non-retryable.
	return NonRetryable
}

// ClassifySQLiteError maps a sqlite3.Error to an [ErrorClassification] based
// on the primary result code.
// See https://www.sqlite.org/rescode.html for the full list of SQLite result
// codes.
//
// Retryable codes:
//   - SQLITE_BUSY (5) — another connection holds the database lock
//   - SQLITE_LOCKED (6) — a table is locked within the same connection
//   - SQLITE_INTERRUPT (9) — the operation was interrupted
//   - SQLITE_PROTOCOL (15) — the file locking protocol timed out
//
// NonRetryable codes:
//   - SQLITE_ERROR (1) — generic SQL error
//   - SQLITE_READONLY (8) — attempt to write a readonly database
//   - SQLITE_CORRUPT (11) — the database image is malformed
//   - SQLITE_SCHEMA (17) — the schema changed under a prepared statement
//   - SQLITE_TOOBIG (18) — a string or blob exceeds the size limit
//   - SQLITE_CONSTRAINT (19) — constraint violation
//   - SQLITE_MISMATCH (20) — data type mismatch
//   - SQLITE_NOTADB (26) — the file is not a database
//
// Any code not listed above is classified as [NonRetryable].
func ClassifySQLiteError(sqliteErr sqlite3.Error) ErrorClassification {
	switch sqliteErr.Code {
	case sqlite3.ErrBusy,
		sqlite3.ErrLocked,
		sqlite3.ErrInterrupt,
		sqlite3.ErrProtocol:
		return Retryable
	}

	switch sqliteErr.Code {
	case sqlite3.ErrError,
		sqlite3.ErrReadonly,
		sqlite3.ErrCorrupt,
		sqlite3.ErrSchema,
		sqlite3.ErrTooBig,
		sqlite3.ErrConstraint,
		sqlite3.ErrMismatch,
		sqlite3.ErrNotADB:
		return NonRetryable
	}

	// Default: treat unrecognised codes as non-retryable.
	return NonRetryable
}
