package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.GetUser(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("GetUser(missing) = %v, %v", got, err)
	}

	now := time.Unix(1_700_000_000, 0)
	if err := s.UpsertUser(ctx, &domain.User{UserID: "u1", Username: "anon", LastSeenAt: now, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	later := now.Add(time.Hour)
	if err := s.UpdateLastSeen(ctx, "u1", later); err != nil {
		t.Fatalf("UpdateLastSeen: %v", err)
	}

	got, err = s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "anon" || !got.LastSeenAt.Equal(later) || !got.CreatedAt.Equal(now) {
		t.Fatalf("user = %+v", got)
	}
}

func TestWorkspaceSaveLoadDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	snap := &domain.WorkspaceSnapshot{UserID: "u1", SessionID: "tab-1", State: []byte(`{"view":"compose"}`)}
	if err := s.SaveWorkspace(ctx, snap); err != nil {
		t.Fatalf("SaveWorkspace: %v", err)
	}
	snap.State = []byte(`{"view":"edit"}`)
	if err := s.SaveWorkspace(ctx, snap); err != nil {
		t.Fatalf("SaveWorkspace (update): %v", err)
	}

	got, err := s.GetWorkspace(ctx, "u1", "tab-1")
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	if string(got.State) != `{"view":"edit"}` {
		t.Fatalf("state = %s", got.State)
	}
	if other, _ := s.GetWorkspace(ctx, "u1", "tab-2"); other != nil {
		t.Fatal("snapshot leaked across sessions")
	}

	if err := s.DeleteWorkspace(ctx, "u1", "tab-1"); err != nil {
		t.Fatalf("DeleteWorkspace: %v", err)
	}
	if got, _ := s.GetWorkspace(ctx, "u1", "tab-1"); got != nil {
		t.Fatal("snapshot survived delete")
	}
}

func TestCleanupExpiredWorkspaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	if err := s.SaveWorkspace(ctx, &domain.WorkspaceSnapshot{UserID: "u", SessionID: "old", State: []byte("{}"), CreatedAt: old, UpdatedAt: old}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveWorkspace(ctx, &domain.WorkspaceSnapshot{UserID: "u", SessionID: "new", State: []byte("{}")}); err != nil {
		t.Fatal(err)
	}

	n, err := s.CleanupExpiredWorkspaces(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredWorkspaces: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if got, _ := s.GetWorkspace(ctx, "u", "new"); got == nil {
		t.Fatal("fresh snapshot removed")
	}
}
