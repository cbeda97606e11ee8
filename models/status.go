package models

import "time"

// EngineState is the coarse externally visible state of the sync engine.
type EngineState string

const (
	EngineIdle         EngineState = "idle"
	EngineSyncing      EngineState = "syncing"
	EngineUploading    EngineState = "uploading"
	EngineAuthRequired EngineState = "auth_required"
	EngineError        EngineState = "error"
)

// SyncStatus is the observability surface consumed by the presentation
// layer: a pending-count badge plus a human-readable state. Transient
// sync failures surface here and nowhere else.
type SyncStatus struct {
	State        EngineState `json:"state"`
	Progress     float64     `json:"progress"`
	PendingCount int         `json:"pending_count"`
	LastSync     *time.Time  `json:"last_sync,omitempty"`
	LastError    string      `json:"last_error,omitempty"`
}
