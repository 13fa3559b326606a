// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncSignInSuccess()
	IncSignInFailure(reason string) // reason: "credentials", "unconfirmed"
	IncTokenRevoked()
	ObservePasswordHashDuration(duration time.Duration)

	// User management metrics
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Mail handoff metrics
	IncMailJobPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
