package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestSQLiteErrorClassifier_Classify(t *testing.T) {
	classifier := NewSQLiteErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{
			name: "nil error is non-retryable",
			err:  nil,
			want: NonRetryable,
		},
		{
			name: "plain error is non-retryable",
			err:  errors.New("something broke"),
			want: NonRetryable,
		},
		{
			name: "busy is retryable",
			err:  sqlite3.Error{Code: sqlite3.ErrBusy},
			want: Retryable,
		},
		{
			name: "locked is retryable",
			err:  sqlite3.Error{Code: sqlite3.ErrLocked},
			want: Retryable,
		},
		{
			name: "wrapped busy is still retryable",
			err:  fmt.Errorf("%w: %w", ErrExecutingStatement, sqlite3.Error{Code: sqlite3.ErrBusy}),
			want: Retryable,
		},
		{
			name: "constraint violation is non-retryable",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint},
			want: NonRetryable,
		},
		{
			name: "readonly database is non-retryable",
			err:  sqlite3.Error{Code: sqlite3.ErrReadonly},
			want: NonRetryable,
		},
		{
			name: "corrupt database is non-retryable",
			err:  sqlite3.Error{Code: sqlite3.ErrCorrupt},
			want: NonRetryable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.err))
		})
	}
}
