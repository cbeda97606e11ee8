// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-health-keeper/models"
)

// recordColumns is the column set shared by all three kind tables, in scan
// order.
var recordColumns = []string{
	"id",
	"logged_at",
	"payload",
	"sync_state",
	"last_modified_locally",
	"created_at",
	"updated_at",
}

// Raw queries over the sync_meta key-value table. SQLite placeholders.
const (
	getMetaValue = `
		SELECT value
		FROM sync_meta
		WHERE key = ?;`

	upsertMetaValue = `
		INSERT INTO sync_meta (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)

// buildSelectRecordsQuery builds the SELECT over one kind table, restricted
// by the scope window (when bounded) and by sync states (when given).
// No ORDER BY: callers sort when they need an order.
func buildSelectRecordsQuery(kind models.RecordKind, scope models.ScanScope, states ...models.SyncState) (string, []any, error) {
	if !kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, kind)
	}

	q := squirrel.Select(recordColumns...).From(kind.TableName())

	if window, bounded := scope.Window(); bounded {
		q = q.Where(squirrel.GtOrEq{"logged_at": window.Start}).
			Where(squirrel.Lt{"logged_at": window.End})
	}

	if len(states) > 0 {
		values := make([]string, len(states))
		for i, state := range states {
			values[i] = string(state)
		}
		// squirrel renders a slice value as IN (?,...).
		q = q.Where(squirrel.Eq{"sync_state": values})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildSelectRecordByIDQuery builds the single-record SELECT by primary key.
func buildSelectRecordByIDQuery(kind models.RecordKind, id string) (string, []any, error) {
	if !kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, kind)
	}

	query, args, err := squirrel.Select(recordColumns...).
		From(kind.TableName()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildUpsertRecordQuery builds the full-row upsert for one record.
// created_at is written once on insert and kept on conflict.
func buildUpsertRecordQuery(r models.Record) (string, []any, error) {
	if !r.Kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, r.Kind)
	}

	query, args, err := squirrel.Insert(r.Kind.TableName()).
		Columns(recordColumns...).
		Values(
			r.ID,
			r.LoggedAt,
			[]byte(r.Payload),
			string(r.SyncState),
			r.LastModifiedLocally,
			r.CreatedAt,
			r.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			logged_at = excluded.logged_at,
			payload = excluded.payload,
			sync_state = excluded.sync_state,
			last_modified_locally = excluded.last_modified_locally,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildDeleteRecordQuery builds the hard delete by reference.
func buildDeleteRecordQuery(ref models.RecordRef) (string, []any, error) {
	if !ref.Kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, ref.Kind)
	}

	query, args, err := squirrel.Delete(ref.Kind.TableName()).
		Where(squirrel.Eq{"id": ref.ID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildTransitionQuery builds the conditional sync-state change. The WHERE
// clause includes the expected current state, so the UPDATE affects zero
// rows when the record was deleted or moved on in the meantime.
func buildTransitionQuery(tr models.StateTransition) (string, []any, error) {
	if !tr.Ref.Kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, tr.Ref.Kind)
	}

	query, args, err := squirrel.Update(tr.Ref.Kind.TableName()).
		Set("sync_state", string(tr.To)).
		Where(squirrel.Eq{
			"id":         tr.Ref.ID,
			"sync_state": string(tr.From),
		}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildCountByStateQuery builds the per-table count of records in one sync
// state, restricted by the scope window when bounded.
func buildCountByStateQuery(kind models.RecordKind, state models.SyncState, scope models.ScanScope) (string, []any, error) {
	if !kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, kind)
	}

	q := squirrel.Select("COUNT(*)").
		From(kind.TableName()).
		Where(squirrel.Eq{"sync_state": string(state)})

	if window, bounded := scope.Window(); bounded {
		q = q.Where(squirrel.GtOrEq{"logged_at": window.Start}).
			Where(squirrel.Lt{"logged_at": window.End})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildReleaseQuery builds the whole-table state rollback used by startup
// recovery (uploading back to local, pending_deletion back to synced).
func buildReleaseQuery(kind models.RecordKind, from, to models.SyncState) (string, []any, error) {
	if !kind.Valid() {
		return "", nil, fmt.Errorf("%w: %w: %q", ErrBuildingSQLQuery, ErrUnknownRecordKind, kind)
	}

	query, args, err := squirrel.Update(kind.TableName()).
		Set("sync_state", string(to)).
		Where(squirrel.Eq{"sync_state": string(from)}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
