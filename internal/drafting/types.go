// Package drafting implements the analyze backend: it turns a prompt and attachments
// into a structured complaint, regenerates single sections and answers section chats.
package drafting

import (
	"errors"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/intake"
)

// Mode selects what an analyze request does.
type Mode string

const (
	ModeCreate     Mode = "create"
	ModeRegenerate Mode = "regenerate"
	ModeChat       Mode = "chat"
)

// ErrSectionMissing is returned when a regenerate payload carries no usable content
// for the requested section.
var ErrSectionMissing = errors.New("regenerate response has no content for section")

// HistoryRoleAI is the role the browser records for assistant turns.
const HistoryRoleAI = "ai"

// HistoryTurn is one prior chat turn as sent by clients.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Prompt         string          `json:"prompt,omitempty"`
	Files          []intake.File   `json:"files,omitempty"`
	Type           Mode            `json:"type,omitempty"`
	Section        string          `json:"section,omitempty"`
	CurrentContent string          `json:"currentContent,omitempty"`
	Context        domain.Sections `json:"context"`
	Message        string          `json:"message,omitempty"`
	History        []HistoryTurn   `json:"history,omitempty"`
}

// ExtractedFile reports the text recovered from one attachment.
type ExtractedFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AnalyzeResponse is the envelope returned by POST /api/analyze.
type AnalyzeResponse struct {
	Success        bool              `json:"success"`
	Data           map[string]string `json:"data,omitempty"`
	ExtractedFiles []ExtractedFile   `json:"extractedFiles,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// ResponseKey is the data key carrying a chat reply.
const ResponseKey = "response"

// RequestError reports a malformed analyze request.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string { return e.Msg }

func badRequest(msg string) error { return &RequestError{Msg: msg} }

// IsRequestError reports whether err was caused by invalid input.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// SchemaKeys lists every key of the create response, in display order.
func SchemaKeys() []string {
	keys := make([]string, 0, len(domain.PersonalFields)+len(domain.AccusedFields)+len(domain.AllSections))
	for _, f := range domain.PersonalFields {
		keys = append(keys, f.Key)
	}
	for _, f := range domain.AccusedFields {
		keys = append(keys, f.Key)
	}
	for _, s := range domain.AllSections {
		keys = append(keys, string(s))
	}
	return keys
}
