package service

import "errors"

var (
	// ErrAuthRequired is returned by every sync operation while the engine
	// is suspended on a stale credential. Cleared by ResumeWithToken.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAlreadyRunning is returned by Start when the engine is running.
	ErrAlreadyRunning = errors.New("sync engine already running")

	// ErrStopped is returned by sync operations issued after Stop.
	ErrStopped = errors.New("sync engine stopped")
)
