package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SignInSuccesses     uint64
	SignInFailures      uint64
	TokensRevoked       uint64
	PasswordHashCount   uint64
	PasswordHashTotalNs int64
	UsersCreated        uint64
	UsersUpdated        uint64
	UsersDeleted        uint64
	MailJobsPublished   uint64
	MailJobsDropped     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	signInSuccesses     uint64
	signInFailures      uint64
	tokensRevoked       uint64
	passwordHashCount   uint64
	passwordHashTotalNs int64
	usersCreated        uint64
	usersUpdated        uint64
	usersDeleted        uint64
	mailJobsPublished   uint64
	mailJobsDropped     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SignInSuccesses:     atomic.LoadUint64(&m.signInSuccesses),
		SignInFailures:      atomic.LoadUint64(&m.signInFailures),
		TokensRevoked:       atomic.LoadUint64(&m.tokensRevoked),
		PasswordHashCount:   atomic.LoadUint64(&m.passwordHashCount),
		PasswordHashTotalNs: atomic.LoadInt64(&m.passwordHashTotalNs),
		UsersCreated:        atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:        atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:        atomic.LoadUint64(&m.usersDeleted),
		MailJobsPublished:   atomic.LoadUint64(&m.mailJobsPublished),
		MailJobsDropped:     atomic.LoadUint64(&m.mailJobsDropped),
	}
}

// IncSignInSuccess increments the successful sign-in counter.
func (m *InMemoryRecorder) IncSignInSuccess() {
	atomic.AddUint64(&m.signInSuccesses, 1)
}

// IncSignInFailure increments the failed sign-in counter.
func (m *InMemoryRecorder) IncSignInFailure(reason string) {
	atomic.AddUint64(&m.signInFailures, 1)
}

// IncTokenRevoked increments the revoked token counter.
func (m *InMemoryRecorder) IncTokenRevoked() {
	atomic.AddUint64(&m.tokensRevoked, 1)
}

// ObservePasswordHashDuration records password hashing duration.
func (m *InMemoryRecorder) ObservePasswordHashDuration(duration time.Duration) {
	atomic.AddUint64(&m.passwordHashCount, 1)
	atomic.AddInt64(&m.passwordHashTotalNs, duration.Nanoseconds())
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncMailJobPublished increments the mail job counters by status.
func (m *InMemoryRecorder) IncMailJobPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.mailJobsPublished, 1)
		return
	}
	atomic.AddUint64(&m.mailJobsDropped, 1)
}
