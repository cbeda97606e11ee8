package models

// SyncSnapshot is the authoritative remote state for one query window:
// a mapping from record ID to the remote version of the record.
// Snapshots are ephemeral: they live for the duration of a single merge
// pass and are never persisted.
type SyncSnapshot struct {
	Window  Window
	Records map[string]Record
}

// NewSyncSnapshot indexes the fetched remote records by ID.
// On duplicate IDs the later record wins.
func NewSyncSnapshot(window Window, records []Record) SyncSnapshot {
	s := SyncSnapshot{Window: window, Records: make(map[string]Record, len(records))}
	for _, r := range records {
		s.Records[r.ID] = r
	}
	return s
}

// Has reports whether the remote snapshot contains the given ID.
func (s SyncSnapshot) Has(id string) bool {
	_, ok := s.Records[id]
	return ok
}

// Len returns the number of remote records in the snapshot.
func (s SyncSnapshot) Len() int {
	return len(s.Records)
}
