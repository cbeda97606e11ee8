// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/models"
)

type reconciler struct {
	repo store.RecordRepository

	logger *logger.Logger
}

func NewReconciler(repo store.RecordRepository, logger *logger.Logger) Reconciler {
	return &reconciler{repo: repo, logger: logger}
}

// Reconcile implements [Reconciler]. Merge rules, per record id:
//
//   - remote record with no local twin: inserted as synced;
//   - remote record whose local twin is synced: remote wins, the local
//     row is overwritten in place;
//   - remote record whose local twin is unconfirmed (local, uploading,
//     pending_deletion): the local version is preserved untouched;
//   - synced local record absent from the snapshot: deleted on another
//     device, removed from the cache.
//
// The whole merge lands in one atomic batch. A snapshot identical to the
// cache produces an empty batch and a zero MergeResult.
func (r *reconciler) Reconcile(ctx context.Context, snapshot models.SyncSnapshot) (models.MergeResult, error) {
	result := models.MergeResult{Window: snapshot.Window}

	locals, err := r.localsInWindow(ctx, snapshot.Window)
	if err != nil {
		return models.MergeResult{}, err
	}
	byID := make(map[string]models.Record, len(locals))
	for _, local := range locals {
		byID[local.ID] = local
	}

	change := models.ChangeSet{}
	now := time.Now().UTC()

	// Deterministic batch order regardless of snapshot map iteration.
	ids := make([]string, 0, snapshot.Len())
	for id := range snapshot.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			return models.MergeResult{}, err
		}

		remote := snapshot.Records[id]
		local, exists := byID[id]

		switch {
		case !exists:
			inserted := remote
			inserted.SyncState = models.StateSynced
			inserted.LastModifiedLocally = now
			change.Upserts = append(change.Upserts, inserted)
			result.Inserted++

		case local.SyncState == models.StateSynced:
			if local.LoggedAt.Equal(remote.LoggedAt) &&
				bytes.Equal(local.Payload, remote.Payload) &&
				equalStamp(local.UpdatedAt, remote.UpdatedAt) {
				continue // twin already up to date
			}
			merged := local
			merged.LoggedAt = remote.LoggedAt
			merged.Payload = remote.Payload
			merged.UpdatedAt = remote.UpdatedAt
			merged.LastModifiedLocally = now
			change.Upserts = append(change.Upserts, merged)
			result.Updated++
		}
	}

	for _, local := range locals {
		switch {
		case local.SyncState.Unconfirmed():
			result.Preserved++
		case local.SyncState == models.StateSynced && !snapshot.Has(local.ID):
			// Tombstone by absence: the server no longer returns it.
			change.Deletes = append(change.Deletes, local.Ref())
			result.Deleted++
		}
	}

	if change.Empty() {
		r.logger.Debug().
			Str("func", "reconciler.Reconcile").
			Str("window", snapshot.Window.String()).
			Msg("snapshot matches cache, nothing to merge")
		return result, nil
	}

	if err = r.repo.ApplyBatch(ctx, change); err != nil {
		return models.MergeResult{}, fmt.Errorf("persist merge batch: %w", err)
	}

	r.logger.Info().
		Str("func", "reconciler.Reconcile").
		Str("window", snapshot.Window.String()).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Int("preserved", result.Preserved).
		Msg("snapshot merged into cache")

	return result, nil
}

// localsInWindow collects the cached records whose LoggedAt falls inside
// the window. Day scopes can over-fetch on windows that do not start at
// midnight, so every candidate is checked against the window itself:
// otherwise a synced record just outside the window would be mistaken
// for a remote deletion.
func (r *reconciler) localsInWindow(ctx context.Context, window models.Window) ([]models.Record, error) {
	var locals []models.Record
	for _, day := range window.Days() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := r.repo.Query(ctx, models.ScopeDay(day))
		if err != nil {
			return nil, fmt.Errorf("load cached day %s: %w", day.Format(time.DateOnly), err)
		}
		for _, rec := range records {
			if window.Contains(rec.LoggedAt) {
				locals = append(locals, rec)
			}
		}
	}
	return locals, nil
}

func equalStamp(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
