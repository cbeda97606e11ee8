package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorage is the umbrella error for every cache failure. All
	// lower-level database errors in this package wrap it, so callers that
	// only care about "the cache broke" can match this single sentinel.
	ErrStorage = errors.New("storage error")

	// ErrNotFound is returned when a query targets a record (identified by
	// kind and id) that does not exist in the cache.
	ErrNotFound = errors.New("record was not found")

	// ErrRecordNotSaved is returned when an INSERT of one or more records
	// completes without error but the number of affected rows is zero,
	// indicating that no data was actually persisted.
	ErrRecordNotSaved = errors.New("record was not saved")

	// ErrUnknownRecordKind is returned when an operation names a record kind
	// that maps to no cache table.
	ErrUnknownRecordKind = errors.New("unknown record kind")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied. Each one wraps [ErrStorage].
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = fmt.Errorf("%w: error building sql query", ErrStorage)

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = fmt.Errorf("%w: error executing sql query", ErrStorage)

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = fmt.Errorf("%w: failed to begin transaction", ErrStorage)

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = fmt.Errorf("%w: failed to commit transaction", ErrStorage)

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = fmt.Errorf("%w: failed to execute statement", ErrStorage)

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = fmt.Errorf("%w: failed to scan record row", ErrStorage)

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = fmt.Errorf("%w: failed to scan record rows", ErrStorage)
)
