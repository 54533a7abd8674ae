// Package debounce provides the correlation ledger that prevents duplicate
// alerts for the same (monitor, trigger kind, entity) tuple, plus the
// persisted first-seen sets and matched-entity tracking the scheduler relies on.
package debounce

import (
	"context"
	"time"
)

// Store is the engine's shared mutable evaluation state. Implementations
// must be safe for concurrent use across monitor evaluations.
type Store interface {
	// ShouldSuppress reports whether an alert for the tuple already fired
	// within the cooldown window. When it returns false the tuple is
	// atomically recorded as fired, so concurrent evaluations of the same
	// tuple (event path racing the tick path) yield exactly one emission.
	ShouldSuppress(ctx context.Context, monitorID, kind, entityID string, cooldown time.Duration) (bool, error)

	// MarkSeen records the entity in the monitor's lifetime seen set for the
	// given trigger kind. Returns true only on the first observation.
	MarkSeen(ctx context.Context, monitorID, kind, entityID string) (bool, error)

	// TrackMatch records that the entity matched the monitor's scope, so the
	// tick path knows which entities to re-evaluate.
	TrackMatch(ctx context.Context, monitorID, entityID string) error

	// TrackedEntities returns the entity ids previously matched for the monitor.
	TrackedEntities(ctx context.Context, monitorID string) ([]string, error)

	// ForgetMonitor drops all ledger state for a deleted monitor.
	ForgetMonitor(ctx context.Context, monitorID string) error
}
