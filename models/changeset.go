// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// RecordRef identifies a record by kind and ID, enough to route an
// operation to the right cache table.
type RecordRef struct {
	Kind RecordKind `json:"kind"`
	ID   string     `json:"id"`
}

// StateTransition is a conditional sync-state change: it is applied only
// if the record still exists and is still in the From state. A record
// deleted or mutated between planning and applying is silently skipped.
type StateTransition struct {
	Ref  RecordRef
	From SyncState
	To   SyncState
}

// ChangeSet is one atomic batch of cache mutations. The store applies
// every element inside a single transaction: either all of it lands or
// none of it does.
type ChangeSet struct {
	// Upserts are full-row writes: insert when the ID is new, overwrite
	// when it exists.
	Upserts []Record

	// Deletes are hard deletes by reference.
	Deletes []RecordRef

	// Transitions are conditional sync-state changes (see StateTransition).
	Transitions []StateTransition
}

// Empty reports whether the change set contains no work.
func (c ChangeSet) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Deletes) == 0 && len(c.Transitions) == 0
}

// Size returns the total number of mutations in the change set.
func (c ChangeSet) Size() int {
	return len(c.Upserts) + len(c.Deletes) + len(c.Transitions)
}
