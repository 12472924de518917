package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/draft-studio/internal/assistant"
	"github.com/ashureev/draft-studio/internal/client"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/editor"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/ashureev/draft-studio/internal/preview"
	"github.com/ashureev/draft-studio/internal/workspace"
	"github.com/go-chi/chi/v5"
)

// WorkspaceHandler exposes the view coordinator of the calling tab session.
type WorkspaceHandler struct {
	*Handler
	limiter     *RateLimiter
	maxBodySize int64
}

// NewWorkspaceHandler creates a workspace handler. The limiter guards the routes that
// call the model; nil disables it.
func NewWorkspaceHandler(base *Handler, limiter *RateLimiter, maxBodySize int64) *WorkspaceHandler {
	return &WorkspaceHandler{Handler: base, limiter: limiter, maxBodySize: maxBodySize}
}

func workspaceLimited(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusTooManyRequests, errRateLimited)
}

// RegisterRoutes registers workspace routes.
func (h *WorkspaceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/workspace", func(r chi.Router) {
		llm := r.With(RateLimit(h.limiter, workspaceLimited))

		r.Get("/", h.GetState)
		llm.Post("/compose", h.Compose)
		r.Post("/view", h.ShowView)
		r.Put("/filing", h.SetFiling)

		r.Post("/fields/{group}", h.AddField)
		r.Put("/fields/{group}/{id}", h.UpdateField)
		r.Delete("/fields/{group}/{id}", h.RemoveField)

		llm.Post("/sections/{section}/regenerate", h.Regenerate)

		r.Route("/editor", func(r chi.Router) {
			r.Post("/open", h.OpenEditor)
			r.Put("/content", h.SetEditorContent)
			r.Post("/ops/{op}", h.EditorOp)
			r.Get("/split", h.SplitView)
			r.Post("/save", h.SaveEditor)
			r.Post("/cancel", h.CancelEditor)
		})

		r.Route("/layout", func(r chi.Router) {
			r.Post("/columns/{column}/toggle", h.ToggleColumn)
			r.Post("/columns/{column}/expand", h.ExpandColumn)
			r.Post("/collapse", h.CollapseColumn)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/open", h.OpenAssistant)
			r.Post("/close", h.CloseAssistant)
			r.With(RateLimit(h.limiter, workspaceLimited)).Post("/messages", h.SendAssistant)
			r.Post("/messages/{index}/apply", h.ApplyAssistant)
		})

		r.Get("/preview", h.Preview)
		r.Post("/export", h.Export)
	})
}

// statusFor maps workspace errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workspace.ErrBusy),
		errors.Is(err, workspace.ErrNoDocument),
		errors.Is(err, workspace.ErrStale),
		errors.Is(err, editor.ErrNotOpen),
		errors.Is(err, editor.ErrReadOnly),
		errors.Is(err, editor.ErrNoPendingOp),
		errors.Is(err, editor.ErrDiffInactive),
		errors.Is(err, assistant.ErrNotOpen),
		errors.Is(err, assistant.ErrSendInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrUnknownView),
		errors.Is(err, workspace.ErrUnknownEditorOp),
		errors.Is(err, domain.ErrUnknownSection),
		errors.Is(err, domain.ErrUnknownGroup),
		errors.Is(err, editor.ErrUnknownColumn),
		errors.Is(err, intake.ErrUnsupportedExtension),
		errors.Is(err, client.ErrEmptyInput),
		errors.Is(err, client.ErrEmptyMessage),
		errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, assistant.ErrNotApplicable):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrUpstream),
		errors.Is(err, client.ErrSectionMissing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Workspace operation failed", "error", err, "status", status)
	}
	Error(w, status, err.Error())
}

func (h *WorkspaceHandler) writeState(w http.ResponseWriter, coord *workspace.Coordinator) {
	JSON(w, http.StatusOK, coord.State())
}

// GetState returns the workspace snapshot.
func (h *WorkspaceHandler) GetState(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	h.writeState(w, coord)
}

type composeRequest struct {
	Prompt string        `json:"prompt"`
	Files  []intake.File `json:"files"`
}

// Compose drafts a new document from a prompt and attachments.
func (h *WorkspaceHandler) Compose(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req composeRequest
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	for _, f := range req.Files {
		if err := intake.Validate(f.Name); err != nil {
			writeErr(w, err)
			return
		}
	}
	if err := coord.Compose(r.Context(), req.Prompt, req.Files); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

// ShowView switches the top-level view.
func (h *WorkspaceHandler) ShowView(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req struct {
		View string `json:"view"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	if err := coord.ShowView(workspace.View(req.View)); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

// SetFiling changes the date and filing office.
func (h *WorkspaceHandler) SetFiling(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Date   string `json:"date"`
		Office string `json:"filingOffice"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	if err := coord.SetFilingDetails(req.Date, req.Office); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

func fieldGroup(w http.ResponseWriter, r *http.Request) (domain.FieldGroup, bool) {
	g, err := domain.ParseFieldGroup(chi.URLParam(r, "group"))
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return g, true
}

// AddField appends a party field.
func (h *WorkspaceHandler) AddField(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	g, ok := fieldGroup(w, r)
	if !ok {
		return
	}
	var req struct {
		Label       string `json:"label"`
		Placeholder string `json:"placeholder"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	field, err := coord.AddField(g, req.Label, req.Placeholder)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, field)
}

// UpdateField edits a party field.
func (h *WorkspaceHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	g, ok := fieldGroup(w, r)
	if !ok {
		return
	}
	var req struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	if err := coord.UpdateField(g, chi.URLParam(r, "id"), req.Label, req.Value); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

// RemoveField deletes a party field.
func (h *WorkspaceHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	g, ok := fieldGroup(w, r)
	if !ok {
		return
	}
	if err := coord.RemoveField(g, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

func sectionParam(w http.ResponseWriter, raw string) (domain.Section, bool) {
	s, err := domain.ParseSection(raw)
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return s, true
}

// Regenerate rewrites one section.
func (h *WorkspaceHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	section, ok := sectionParam(w, chi.URLParam(r, "section"))
	if !ok {
		return
	}
	if err := coord.Regenerate(r.Context(), section); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

type sectionRequest struct {
	Section string `json:"section"`
}

// OpenEditor starts an edit session.
func (h *WorkspaceHandler) OpenEditor(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req sectionRequest
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	section, ok := sectionParam(w, req.Section)
	if !ok {
		return
	}
	st, err := coord.OpenEditor(section)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

// SetEditorContent replaces the working content.
func (h *WorkspaceHandler) SetEditorContent(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	st, err := coord.SetEditorContent(req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

// EditorOp runs a diff or auto-paragraph action.
func (h *WorkspaceHandler) EditorOp(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	st, err := coord.ApplyEditorOp(workspace.EditorOp(chi.URLParam(r, "op")))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

// SplitView returns the side-by-side comparison.
func (h *WorkspaceHandler) SplitView(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	view, err := coord.SplitView()
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// SaveEditor commits the session.
func (h *WorkspaceHandler) SaveEditor(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	if err := coord.SaveEditor(); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

// CancelEditor discards the session.
func (h *WorkspaceHandler) CancelEditor(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	coord.CancelEditor()
	h.writeState(w, coord)
}

func columnParam(w http.ResponseWriter, r *http.Request) (editor.Column, bool) {
	col, err := editor.ParseColumn(chi.URLParam(r, "column"))
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	return col, true
}

// ToggleColumn flips a column's visibility.
func (h *WorkspaceHandler) ToggleColumn(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	col, ok := columnParam(w, r)
	if !ok {
		return
	}
	warning, err := coord.ToggleColumn(col)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"layout":  coord.State().Layout,
		"warning": warning,
	})
}

// ExpandColumn shows one column fullscreen.
func (h *WorkspaceHandler) ExpandColumn(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	col, ok := columnParam(w, r)
	if !ok {
		return
	}
	if err := coord.ExpandColumn(col); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, coord.State().Layout)
}

// CollapseColumn leaves fullscreen.
func (h *WorkspaceHandler) CollapseColumn(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	coord.CollapseColumn()
	JSON(w, http.StatusOK, coord.State().Layout)
}

// OpenAssistant binds the chat panel to a section.
func (h *WorkspaceHandler) OpenAssistant(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req sectionRequest
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	section, ok := sectionParam(w, req.Section)
	if !ok {
		return
	}
	if err := coord.OpenAssistant(section); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, coord.State().Assistant)
}

// CloseAssistant hides the chat panel.
func (h *WorkspaceHandler) CloseAssistant(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	coord.CloseAssistant()
	JSON(w, http.StatusOK, coord.State().Assistant)
}

// SendAssistant sends one chat message. A failed reply still returns the inline error turn.
func (h *WorkspaceHandler) SendAssistant(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, h.maxBodySize, &req) {
		return
	}
	turn, err := coord.SendAssistant(r.Context(), req.Message)
	if err != nil {
		if turn.Error {
			JSON(w, http.StatusBadGateway, map[string]interface{}{"error": err.Error(), "turn": turn})
			return
		}
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"turn": turn})
}

// ApplyAssistant overwrites the bound section with an assistant turn.
func (h *WorkspaceHandler) ApplyAssistant(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid turn index")
		return
	}
	if err := coord.ApplyAssistant(index); err != nil {
		writeErr(w, err)
		return
	}
	h.writeState(w, coord)
}

// Preview returns the rendered preview document.
func (h *WorkspaceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	html, err := coord.PreviewHTML()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		slog.Debug("Failed to write preview", "error", err)
	}
}

// Export returns the document as a PDF attachment.
func (h *WorkspaceHandler) Export(w http.ResponseWriter, r *http.Request) {
	coord, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	res, err := coord.Export(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", preview.ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.PDF); err != nil {
		slog.Debug("Failed to write export", "error", err)
	}
}
