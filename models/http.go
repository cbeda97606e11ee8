package models

import (
	"encoding/json"
	"time"
)

// RecordDTO is the wire representation of a record on the remote records
// API. Sync state is a purely local concern and never crosses the wire.
type RecordDTO struct {
	// ID is the client-assigned record identifier (the upsert key).
	ID string `json:"id"`

	// Kind is the record family: meal, water or weight.
	Kind RecordKind `json:"kind"`

	// LoggedAt is the domain timestamp of the entry.
	LoggedAt time.Time `json:"logged_at"`

	// Payload is the kind-specific domain document, passed through
	// verbatim.
	Payload json.RawMessage `json:"payload"`

	// UpdatedAt is the server-side modification timestamp, absent on
	// upload requests.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ToRecord converts a wire record into a cache record in the given sync
// state. Pull paths pass StateSynced: a refresh only ever materializes
// confirmed records.
func (d RecordDTO) ToRecord(state SyncState) Record {
	return Record{
		ID:        d.ID,
		Kind:      d.Kind,
		LoggedAt:  d.LoggedAt,
		Payload:   d.Payload,
		SyncState: state,
		UpdatedAt: d.UpdatedAt,
	}
}

// DTOFromRecord converts a cache record into its wire representation.
func DTOFromRecord(r Record) RecordDTO {
	return RecordDTO{
		ID:       r.ID,
		Kind:     r.Kind,
		LoggedAt: r.LoggedAt,
		Payload:  r.Payload,
	}
}
