package domain

import (
	"testing"
	"time"
)

func TestUser_IsLocked(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(30 * time.Minute)
	past := now.Add(-time.Minute)

	u := User{IsActive: true}
	if u.IsLocked(now) {
		t.Fatalf("nil LockedUntil should not be locked")
	}

	u.LockedUntil = &future
	if !u.IsLocked(now) {
		t.Fatalf("future LockedUntil should be locked")
	}
	if u.CanLogin(now) {
		t.Fatalf("locked user should not be able to log in")
	}

	// An elapsed lock is implicitly expired; the stale counter stays until
	// the next attempt resolves.
	u.LockedUntil = &past
	u.FailedLoginAttempts = 5
	if u.IsLocked(now) {
		t.Fatalf("past LockedUntil should not be locked")
	}
	if !u.CanLogin(now) {
		t.Fatalf("user with expired lock should be able to log in")
	}
	if u.FailedLoginAttempts != 5 {
		t.Fatalf("expired lock must not reset the counter")
	}
}

func TestUser_CanLogin_Inactive(t *testing.T) {
	t.Parallel()

	u := User{IsActive: false}
	if u.CanLogin(time.Now()) {
		t.Fatalf("inactive user should never be able to log in")
	}
}

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	first, last := "Ada", "Lovelace"
	u := User{FirstName: &first, LastName: &last}
	if got := u.FullName(); got != "Ada Lovelace" {
		t.Fatalf("got %q", got)
	}

	u = User{FirstName: &first}
	if got := u.FullName(); got != "Ada" {
		t.Fatalf("got %q", got)
	}

	u = User{}
	if got := u.FullName(); got != "" {
		t.Fatalf("got %q", got)
	}
}
