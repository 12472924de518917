package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
)

const (
	sweepInterval = 5 * time.Minute
	saveTimeout   = 5 * time.Second
)

// SnapshotStore persists workspace snapshots. store.Repository satisfies it.
type SnapshotStore interface {
	GetWorkspace(ctx context.Context, userID, sessionID string) (*domain.WorkspaceSnapshot, error)
	SaveWorkspace(ctx context.Context, snap *domain.WorkspaceSnapshot) error
	CleanupExpiredWorkspaces(ctx context.Context, ttl time.Duration) (int64, error)
}

// Factory builds a fresh coordinator for a tab session.
type Factory func(userID, sessionID string) *Coordinator

// EvictCallback is called after a workspace is evicted by the sweeper.
type EvictCallback func(userID, sessionID string)

type entry struct {
	coord    *Coordinator
	saveMu   sync.Mutex
	lastUsed time.Time
}

// Manager keeps one coordinator per (user, tab session).
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	store   SnapshotStore
	factory Factory
	ttl     time.Duration
	now     func() time.Time
	onEvict EvictCallback
}

// NewManager creates a manager. A nil store keeps workspaces in memory only.
func NewManager(store SnapshotStore, factory Factory, ttl time.Duration) *Manager {
	return &Manager{
		entries: make(map[string]*entry),
		store:   store,
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

// OnEvict registers a callback run for every evicted workspace.
func (m *Manager) OnEvict(fn EvictCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

func key(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// Get returns the coordinator of a tab session, restoring its snapshot on first use.
func (m *Manager) Get(ctx context.Context, userID, sessionID string) (*Coordinator, error) {
	k := key(userID, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[k]; ok {
		e.lastUsed = m.now()
		return e.coord, nil
	}

	coord := m.factory(userID, sessionID)
	if m.store != nil {
		snap, err := m.store.GetWorkspace(ctx, userID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load workspace: %w", err)
		}
		if snap != nil {
			if err := coord.Restore(snap.State); err != nil {
				slog.Warn("Discarding unreadable workspace snapshot", "user_id", userID, "session_id", sessionID, "error", err)
			}
		}
	}

	e := &entry{coord: coord, lastUsed: m.now()}
	coord.OnChange(func() { m.save(userID, sessionID, e) })
	m.entries[k] = e
	slog.Debug("Workspace opened", "user_id", userID, "session_id", sessionID)
	return coord, nil
}

func (m *Manager) save(userID, sessionID string, e *entry) {
	if m.store == nil {
		return
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	state, err := e.coord.MarshalSnapshot()
	if err != nil {
		slog.Error("Failed to encode workspace snapshot", "user_id", userID, "session_id", sessionID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	snap := &domain.WorkspaceSnapshot{UserID: userID, SessionID: sessionID, State: state, UpdatedAt: m.now()}
	if err := m.store.SaveWorkspace(ctx, snap); err != nil {
		slog.Error("Failed to save workspace snapshot", "user_id", userID, "session_id", sessionID, "error", err)
	}
}

// Flush saves every open workspace. Used on shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	pending := make(map[string]*entry, len(m.entries))
	for k, e := range m.entries {
		pending[k] = e
	}
	m.mu.Unlock()

	for k, e := range pending {
		userID, sessionID := splitKey(k)
		m.save(userID, sessionID, e)
	}
}

func splitKey(k string) (string, string) {
	userID, sessionID, _ := strings.Cut(k, ":")
	return userID, sessionID
}

// Len reports the number of open workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep evicts workspaces idle for longer than the TTL and purges expired snapshots.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var evicted []string
	for k, e := range m.entries {
		if e.lastUsed.Before(cutoff) {
			e.coord.Close()
			delete(m.entries, k)
			evicted = append(evicted, k)
		}
	}
	onEvict := m.onEvict
	m.mu.Unlock()

	for _, k := range evicted {
		userID, sessionID := splitKey(k)
		slog.Info("Workspace sweeper evicted idle workspace", "user_id", userID, "session_id", sessionID)
		if onEvict != nil {
			onEvict(userID, sessionID)
		}
	}

	if m.store != nil {
		if deleted, err := m.store.CleanupExpiredWorkspaces(ctx, m.ttl); err != nil {
			slog.Error("Workspace sweeper failed to purge snapshots", "error", err)
		} else if deleted > 0 {
			slog.Info("Workspace sweeper purged expired snapshots", "count", deleted)
		}
	}
	return len(evicted)
}

// StartSweeper runs Sweep periodically until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = sweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Workspace sweeper started", "interval", interval, "ttl", m.ttl)

		for {
			select {
			case <-ticker.C:
				m.Sweep(ctx)
			case <-ctx.Done():
				slog.Info("Workspace sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
