package domain

import (
	"testing"
	"time"
)

func TestUserIdleFor(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := &User{LastSeenAt: now.Add(-5 * time.Minute)}
	if got := u.IdleFor(now); got != 5*time.Minute {
		t.Fatalf("expected 5m idle, got %v", got)
	}

	future := &User{LastSeenAt: now.Add(time.Minute)}
	if got := future.IdleFor(now); got != 0 {
		t.Fatalf("expected clamped idle, got %v", got)
	}
}
