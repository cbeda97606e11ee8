// Package utils provides general-purpose helper utilities
// used across different parts of the sync engine.
// Includes tools for working with context, type-safe keys, record ID
// generation, day formatting, HTTP client initialization, and other
// common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// Sync trigger origins. Every entry point into the orchestrator tags its
// context with one of these so log lines show what started a cycle.
const (
	// TriggerManual marks a sync explicitly requested by the user
	// (pull-to-refresh, a tap on the sync badge).
	TriggerManual = "manual"

	// TriggerPeriodic marks a sync started by the interval worker.
	TriggerPeriodic = "periodic"

	// TriggerReachability marks a push started because connectivity
	// came back while writes were pending.
	TriggerReachability = "net_restored"

	// TriggerStartup marks the best-effort sync performed right after
	// the engine starts.
	TriggerStartup = "startup"
)

// TriggerCtxKey is the key used to store the sync trigger origin in the
// context. Used together with GetTriggerFromContext for type-safe
// retrieval.
//
// Example of writing a value to the context:
//
//	ctx := utils.WithTrigger(ctx, utils.TriggerManual)
var TriggerCtxKey = contextKey("syncTrigger")

// WithTrigger returns a copy of ctx tagged with the sync trigger origin.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerCtxKey, trigger)
}

// GetTriggerFromContext retrieves the sync trigger origin from the context.
//
// Returns the trigger string and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
func GetTriggerFromContext(ctx context.Context) (string, bool) {
	trigger, ok := ctx.Value(TriggerCtxKey).(string)
	return trigger, ok
}
