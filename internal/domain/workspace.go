package domain

import "time"

// WorkspaceSnapshot is the persisted state of one tab session's workspace.
// State holds the JSON encoding produced by the workspace package.
type WorkspaceSnapshot struct {
	UserID    string
	SessionID string
	State     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
