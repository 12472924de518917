// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
)

// Repository defines the interface for persisting users and workspace snapshots.
type Repository interface {
	// GetUser retrieves a user by their user ID. A missing user is (nil, nil).
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// GetWorkspace retrieves the snapshot of one tab session. A missing snapshot is (nil, nil).
	GetWorkspace(ctx context.Context, userID, sessionID string) (*domain.WorkspaceSnapshot, error)

	// SaveWorkspace creates or replaces a workspace snapshot.
	SaveWorkspace(ctx context.Context, snap *domain.WorkspaceSnapshot) error

	// DeleteWorkspace removes a workspace snapshot.
	DeleteWorkspace(ctx context.Context, userID, sessionID string) error

	// CleanupExpiredWorkspaces removes snapshots not updated within ttl.
	CleanupExpiredWorkspaces(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
