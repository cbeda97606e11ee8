// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record represents a single diary entry (a meal, a water intake, or a
// weight measurement) as stored in the local device cache.
// The payload is kept as an opaque JSON document; the engine itself only
// interprets the identity, timestamp, and synchronization fields.
type Record struct {
	// ID is the globally unique identifier of the record.
	// It is generated on the client at creation time, before any network
	// call, and never changes. The remote store upserts by this ID, which
	// makes re-sending the same record idempotent.
	ID string `json:"id"`

	// Kind selects the record family (meal, water, weight) and thereby
	// the cache table the record lives in.
	Kind RecordKind `json:"kind"`

	// LoggedAt is the domain timestamp of the entry: when the meal was
	// eaten, the water drunk, the weight measured. Window queries and the
	// remote day snapshots are keyed by this field.
	LoggedAt time.Time `json:"logged_at"`

	// Payload holds the kind-specific domain fields as a JSON document.
	// The cache treats this field as an opaque string; use MealPayload,
	// WaterPayload or WeightPayload to decode it.
	Payload json.RawMessage `json:"payload"`

	// SyncState tracks where the record stands in the reconciliation
	// lifecycle. See the SyncState constants.
	SyncState SyncState `json:"sync_state"`

	// LastModifiedLocally is bumped on every local mutation and is used
	// to detect that a record changed since the last sync.
	LastModifiedLocally time.Time `json:"last_modified_locally"`

	// CreatedAt is the timestamp when the record was first saved locally.
	CreatedAt *time.Time `json:"created_at,omitempty"`

	// UpdatedAt is the timestamp of the last local write.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RecordKind defines the family of a diary record.
// The value determines how Record.Payload must be interpreted and which
// cache table stores the record.
type RecordKind string

const (
	// KindMeal represents a meal entry with its nutrition facts.
	KindMeal RecordKind = "meal"

	// KindWater represents a single water intake entry.
	KindWater RecordKind = "water"

	// KindWeight represents a body-weight measurement.
	KindWeight RecordKind = "weight"
)

// Kinds returns every record kind in stable order.
// Store code iterates this to fan a cross-kind operation out over the
// per-kind tables.
func Kinds() []RecordKind {
	return []RecordKind{KindMeal, KindWater, KindWeight}
}

// Valid reports whether k is one of the known record kinds.
func (k RecordKind) Valid() bool {
	switch k {
	case KindMeal, KindWater, KindWeight:
		return true
	}
	return false
}

// TableName returns the name of the cache table that stores records of
// this kind.
func (k RecordKind) TableName() string {
	switch k {
	case KindMeal:
		return "meal_entries"
	case KindWater:
		return "water_entries"
	case KindWeight:
		return "weight_entries"
	}
	return ""
}

// SyncState is the per-record reconciliation status.
type SyncState string

const (
	// StateLocal marks a record created or edited on this device and not
	// yet confirmed by the remote store. The set of StateLocal records IS
	// the pending-write queue; there is no separate queue table.
	StateLocal SyncState = "local"

	// StateUploading marks a record currently part of an upload wave.
	// The state is not safe across a process restart: on startup every
	// uploading record is reset to StateLocal (uploads are retryable from
	// scratch, never resumable).
	StateUploading SyncState = "uploading"

	// StateSynced marks a record confirmed by the remote store. Synced
	// records are disposable from the cache's perspective: a pull-merge
	// may overwrite or delete them based on the remote snapshot.
	StateSynced SyncState = "synced"

	// StatePendingDeletion marks a record whose deletion was requested
	// locally. It is hidden from reads immediately but kept until the
	// remote delete is acknowledged; on failure it reverts to StateSynced.
	StatePendingDeletion SyncState = "pending_deletion"
)

// Valid reports whether s is one of the known sync states.
func (s SyncState) Valid() bool {
	switch s {
	case StateLocal, StateUploading, StateSynced, StatePendingDeletion:
		return true
	}
	return false
}

// Unconfirmed reports whether the record carries local intent the remote
// store has not acknowledged yet. Unconfirmed records must never be
// overwritten or deleted by a pull-merge.
func (s SyncState) Unconfirmed() bool {
	return s == StateLocal || s == StateUploading || s == StatePendingDeletion
}

// Meal decodes the payload of a KindMeal record.
func (r *Record) Meal() (MealPayload, error) {
	var p MealPayload
	if r.Kind != KindMeal {
		return p, fmt.Errorf("record %s is %q, not a meal", r.ID, r.Kind)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("decode meal payload: %w", err)
	}
	return p, nil
}

// Water decodes the payload of a KindWater record.
func (r *Record) Water() (WaterPayload, error) {
	var p WaterPayload
	if r.Kind != KindWater {
		return p, fmt.Errorf("record %s is %q, not a water entry", r.ID, r.Kind)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("decode water payload: %w", err)
	}
	return p, nil
}

// Weight decodes the payload of a KindWeight record.
func (r *Record) Weight() (WeightPayload, error) {
	var p WeightPayload
	if r.Kind != KindWeight {
		return p, fmt.Errorf("record %s is %q, not a weight entry", r.ID, r.Kind)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("decode weight payload: %w", err)
	}
	return p, nil
}

// Ref returns the (kind, id) reference of the record.
func (r *Record) Ref() RecordRef {
	return RecordRef{Kind: r.Kind, ID: r.ID}
}
