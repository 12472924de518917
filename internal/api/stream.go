package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ashureev/draft-studio/internal/identity"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

const streamWriteTimeout = 10 * time.Second

// StreamRegistry tracks the event stream of each tab session. A tab holds at most one stream.
type StreamRegistry struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
}

// NewStreamRegistry creates an empty registry.
func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{active: make(map[string]map[string]*websocket.Conn)}
}

// Register adds a stream, closing any stream the tab already had.
func (m *StreamRegistry) Register(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*websocket.Conn)
	}
	existing := m.active[userID][sessionID]
	m.active[userID][sessionID] = conn
	m.mu.Unlock()

	if existing != nil && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "stream replaced")
	}
	slog.Debug("Workspace stream registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes a stream if it is still the registered one.
func (m *StreamRegistry) Unregister(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, userID)
			}
			slog.Debug("Workspace stream unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

// Active reports whether the tab has a stream.
func (m *StreamRegistry) Active(userID, sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[userID][sessionID]
	return ok
}

// CloseSession closes the stream of one tab.
func (m *StreamRegistry) CloseSession(userID, sessionID string) {
	m.mu.Lock()
	sessions := m.active[userID]
	conn := sessions[sessionID]
	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(m.active, userID)
	}
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusGoingAway, "workspace closed")
	}
}

// CloseAll closes every stream. Used on shutdown.
func (m *StreamRegistry) CloseAll() {
	m.mu.Lock()
	var conns []*websocket.Conn
	for userID, sessions := range m.active {
		for _, conn := range sessions {
			conns = append(conns, conn)
		}
		delete(m.active, userID)
	}
	m.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// StreamHandler serves GET /ws/workspace: the current state followed by every workspace event.
type StreamHandler struct {
	*Handler
	allowedOrigin string
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(base *Handler, allowedOrigin string) *StreamHandler {
	return &StreamHandler{Handler: base, allowedOrigin: allowedOrigin}
}

// RegisterRoutes registers the stream route.
func (h *StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/workspace", h.ServeHTTP)
}

type streamMessage struct {
	Type  string      `json:"type"`
	Event interface{} `json:"event,omitempty"`
	State interface{} `json:"state,omitempty"`
}

// ServeHTTP implements http.Handler for the websocket upgrade.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.streams.Register(userID, sessionID, ws)
	defer h.streams.Unregister(userID, sessionID, ws)

	events, unsubscribe := coord.Subscribe()
	defer unsubscribe()

	// CloseRead drains client frames and cancels ctx when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	if err := writeJSON(ctx, ws, streamMessage{Type: "state", State: coord.State()}); err != nil {
		slog.Debug("Failed to send initial state", "error", err, "user_id", userID)
		return
	}

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeJSON(ctx, ws, streamMessage{Type: "event", Event: ev}); err != nil {
				slog.Debug("Workspace stream write failed", "error", err, "user_id", userID)
				return
			}
		case <-ctx.Done():
			slog.Debug("Workspace stream closed by client", "user_id", userID, "session_id", sessionID)
			return
		}
	}
}

func (h *StreamHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
