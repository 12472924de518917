// Package api provides HTTP handlers for the drafting studio.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/draft-studio/internal/identity"
	"github.com/ashureev/draft-studio/internal/store"
	"github.com/ashureev/draft-studio/internal/workspace"
)

// defaultMaxRequestBodySize is used when no limit is configured (25MB, attachments are base64).
const defaultMaxRequestBodySize = 25 << 20

// Handler provides common handler utilities.
type Handler struct {
	repo       store.Repository
	workspaces *workspace.Manager
	streams    *StreamRegistry
	isDev      bool
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, workspaces *workspace.Manager, streams *StreamRegistry, isDev bool) *Handler {
	if streams == nil {
		streams = NewStreamRegistry()
	}
	return &Handler{repo: repo, workspaces: workspaces, streams: streams, isDev: isDev}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeBody reads a JSON request body bounded by limit.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	if limit <= 0 {
		limit = defaultMaxRequestBodySize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// workspaceFor resolves the coordinator of the calling tab session.
func (h *Handler) workspaceFor(w http.ResponseWriter, r *http.Request) (*workspace.Coordinator, bool) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	coord, err := h.workspaces.Get(r.Context(), userID, identity.SessionIDFromContext(r.Context()))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load workspace")
		return nil, false
	}
	return coord, true
}
