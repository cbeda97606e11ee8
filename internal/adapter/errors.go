package adapter

import "errors"

// Sentinel errors of the remote transport. Every failure a remote call can
// produce maps onto exactly one of these, so the engine branches with
// [errors.Is] instead of inspecting status codes.
var (
	// ErrTransport is returned when the request never produced an HTTP
	// response: DNS failure, refused connection, timeout. Retryable.
	ErrTransport = errors.New("transport failure")

	// ErrUnauthorized is returned on HTTP 401 and for locally detected
	// expired tokens. Sync suspends until a fresh credential arrives.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrValidation is returned for 4xx responses other than 401. The
	// rejected record will not be accepted by retrying unchanged.
	ErrValidation = errors.New("record rejected")

	// ErrRemoteUnavailable is returned on 5xx responses. The remote is
	// reachable but unhealthy; worth retrying later.
	ErrRemoteUnavailable = errors.New("remote unavailable")
)
