package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncSignInSuccess()
	m.IncSignInFailure("credentials")
	m.IncSignInFailure("unconfirmed")
	m.IncTokenRevoked()
	m.IncUserCreated()
	m.IncUserUpdated()
	m.IncUserDeleted()
	m.IncMailJobPublished("success")
	m.IncMailJobPublished("dropped")
	m.ObservePasswordHashDuration(50 * time.Millisecond)

	got := m.Snapshot()
	if got.SignInSuccesses != 1 {
		t.Errorf("sign-in successes = %d, want 1", got.SignInSuccesses)
	}
	if got.SignInFailures != 2 {
		t.Errorf("sign-in failures = %d, want 2", got.SignInFailures)
	}
	if got.TokensRevoked != 1 {
		t.Errorf("tokens revoked = %d, want 1", got.TokensRevoked)
	}
	if got.UsersCreated != 1 || got.UsersUpdated != 1 || got.UsersDeleted != 1 {
		t.Errorf("user counters = %d/%d/%d, want 1/1/1", got.UsersCreated, got.UsersUpdated, got.UsersDeleted)
	}
	if got.MailJobsPublished != 1 || got.MailJobsDropped != 1 {
		t.Errorf("mail counters = %d/%d, want 1/1", got.MailJobsPublished, got.MailJobsDropped)
	}
	if got.PasswordHashCount != 1 || got.PasswordHashTotalNs != (50 * time.Millisecond).Nanoseconds() {
		t.Errorf("hash observations = %d/%dns", got.PasswordHashCount, got.PasswordHashTotalNs)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncSignInSuccess()
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().SignInSuccesses; got != 1000 {
		t.Errorf("sign-in successes = %d, want 1000", got)
	}
}
