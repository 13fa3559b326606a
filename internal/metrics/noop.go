package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignInSuccess is a no-op.
func (n *NoopRecorder) IncSignInSuccess() {}

// IncSignInFailure is a no-op.
func (n *NoopRecorder) IncSignInFailure(reason string) {}

// IncTokenRevoked is a no-op.
func (n *NoopRecorder) IncTokenRevoked() {}

// ObservePasswordHashDuration is a no-op.
func (n *NoopRecorder) ObservePasswordHashDuration(duration time.Duration) {}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserUpdated is a no-op.
func (n *NoopRecorder) IncUserUpdated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncMailJobPublished is a no-op.
func (n *NoopRecorder) IncMailJobPublished(status string) {}
