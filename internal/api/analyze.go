package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/draft-studio/internal/assistant"
	"github.com/ashureev/draft-studio/internal/drafting"
	"github.com/ashureev/draft-studio/internal/identity"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const errRateLimited = "rate limit exceeded"

// AnalyzeHandler serves the drafting endpoint and the frontend configuration.
type AnalyzeHandler struct {
	svc         *drafting.Service
	limiter     *RateLimiter
	log         assistant.ConversationLogger
	maxBodySize int64
}

// NewAnalyzeHandler creates the handler. A nil limiter disables rate limiting.
func NewAnalyzeHandler(svc *drafting.Service, limiter *RateLimiter, log assistant.ConversationLogger, maxBodySize int64) *AnalyzeHandler {
	if log == nil {
		log = assistant.NoopConversationLogger()
	}
	return &AnalyzeHandler{svc: svc, limiter: limiter, log: log, maxBodySize: maxBodySize}
}

// RegisterRoutes registers the analyze and config routes.
func (h *AnalyzeHandler) RegisterRoutes(r chi.Router) {
	r.With(RateLimit(h.limiter, analyzeLimited)).Post("/api/analyze", h.Analyze)
	r.Get("/api/config", h.GetConfig)
}

// GetConfig returns the server configuration for the frontend.
func (h *AnalyzeHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"ai_enabled":          h.svc.AIEnabled(),
		"provider":            h.svc.ProviderName(),
		"model":               h.svc.Model(),
		"accepted_extensions": intake.AcceptedExtensions,
	})
}

func analyzeLimited(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusTooManyRequests, drafting.AnalyzeResponse{Error: errRateLimited})
}

// Analyze handles POST /api/analyze. Every outcome is an AnalyzeResponse envelope.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	var req drafting.AnalyzeRequest
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	if req.Type == drafting.ModeChat {
		h.log.Log(assistant.ConversationLogEvent{
			UserID:     userID,
			SessionID:  sessionID,
			Channel:    "analyze_http",
			Direction:  "outbound",
			EventType:  "chat_user_message",
			Section:    req.Section,
			ContentRaw: req.Message,
			Meta:       map[string]any{"request_id": reqID, "history": len(req.History)},
		})
	}

	resp, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if drafting.IsRequestError(err) {
			status = http.StatusBadRequest
		} else {
			slog.Error("Analyze failed", "error", err, "type", req.Type, "user_id", userID, "request_id", reqID)
		}
		JSON(w, status, drafting.AnalyzeResponse{Error: err.Error()})
		return
	}

	if req.Type == drafting.ModeChat {
		h.log.Log(assistant.ConversationLogEvent{
			UserID:     userID,
			SessionID:  sessionID,
			Channel:    "analyze_http",
			Direction:  "inbound",
			EventType:  "chat_assistant_message",
			Section:    req.Section,
			ContentRaw: resp.Data[drafting.ResponseKey],
			Meta:       map[string]any{"request_id": reqID},
		})
	}
	JSON(w, http.StatusOK, resp)
}
