// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the remote health diary store.
//
// The primary abstraction is [RemoteAdapter], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteAdapter]) over the records API.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrRemoteUnavailable] for 5xx).
package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-health-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines transport-agnostic communication with the remote
// records store. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to the
// sentinel values defined in this package.
type RemoteAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. The token is inspected (without
	// signature verification) so its subject and expiry can be logged and
	// an already-expired credential can be rejected before a network call.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// FetchWindow retrieves the authoritative remote state for the given
	// window, fetching one day snapshot per local day the window touches.
	// Transient failures (transport errors and 5xx responses) are retried
	// with bounded backoff; the returned records carry no sync state of
	// their own and are materialized as synced by the caller.
	FetchWindow(ctx context.Context, window models.Window) (models.SyncSnapshot, error)

	// Push uploads one record as an upsert-by-id. Re-sending the same
	// record is idempotent on the server. Push never retries in-flight:
	// a failed upload stays local and rides the next push wave.
	Push(ctx context.Context, record models.Record) error

	// Remove tombstones one record on the server. A 404 counts as success:
	// the record is already gone remotely, which is the desired outcome.
	Remove(ctx context.Context, ref models.RecordRef) error

	// Ping issues a cheap reachability probe. Any HTTP response, including
	// an error status, means the remote is reachable; only a transport
	// failure reports false.
	Ping(ctx context.Context) bool
}

// TokenInfo is the result of unverified bearer-token introspection.
type TokenInfo struct {
	// Subject is the sub claim, when present.
	Subject string

	// ExpiresAt is the exp claim, nil when the token carries none.
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}
