package models

// UploadOutcome is the per-record result of one upload wave.
type UploadOutcome struct {
	// OK is true when the remote store acknowledged the record.
	OK bool

	// Permanent is true when the failure was a validation rejection that
	// must not be retried automatically (the record stays local but is
	// excluded from automatic pushes for the rest of the session).
	Permanent bool

	// Err holds the failure, nil on success.
	Err error
}

// UploadReport summarizes one bounded-concurrency upload wave.
type UploadReport struct {
	// Attempted is the number of records handed to the wave.
	Attempted int

	// Synced is the number of records the remote store acknowledged.
	Synced int

	// Outcomes maps record ID to its individual result.
	Outcomes map[string]UploadOutcome
}

// Failed returns the number of records that did not sync.
func (r UploadReport) Failed() int {
	return r.Attempted - r.Synced
}

// Progress returns synced/attempted. An empty wave is complete, so it
// reports 1.
func (r UploadReport) Progress() float64 {
	if r.Attempted == 0 {
		return 1
	}
	return float64(r.Synced) / float64(r.Attempted)
}

// MergeResult summarizes one reconciliation pass over a window.
type MergeResult struct {
	// Window is the interval the pass covered.
	Window Window

	// Inserted counts remote records that were new to the cache.
	Inserted int

	// Updated counts synced records whose payload was overwritten with
	// the remote version.
	Updated int

	// Deleted counts synced records removed because the remote snapshot
	// no longer contained them.
	Deleted int

	// Preserved counts records with unconfirmed local changes that the
	// pass deliberately left untouched.
	Preserved int
}

// Changed reports whether the pass mutated the cache at all.
func (m MergeResult) Changed() bool {
	return m.Inserted+m.Updated+m.Deleted > 0
}
