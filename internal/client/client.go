// Package client is the typed caller of the analyze endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/drafting"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/ashureev/draft-studio/internal/richtext"
)

var (
	// ErrEmptyInput blocks a create with a blank prompt and no attachments.
	ErrEmptyInput = errors.New("prompt or files required")
	// ErrEmptyMessage blocks a chat send with a blank message.
	ErrEmptyMessage = errors.New("message is required")
	// ErrUpstream wraps failures reported by the drafting service.
	ErrUpstream = errors.New("draft service failed")
	// ErrSectionMissing is returned when a regenerate reply has no usable content.
	ErrSectionMissing = drafting.ErrSectionMissing
)

// Draft is the result of a create call.
type Draft struct {
	Document *domain.DraftDocument
	Original *domain.OriginalInput
}

// Client issues create, regenerate and chat calls.
type Client struct {
	transport Transport
	now       func() time.Time
}

// New creates a client over t.
func New(t Transport) *Client {
	return &Client{transport: t, now: time.Now}
}

func (c *Client) call(ctx context.Context, req drafting.AnalyzeRequest) (map[string]string, *drafting.AnalyzeResponse, error) {
	resp, err := c.transport.Analyze(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", req.Type, err)
	}
	if !resp.Success {
		return nil, nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Error)
	}
	if resp.Data == nil {
		resp.Data = map[string]string{}
	}
	return resp.Data, resp, nil
}

// Create drafts a complete document from a prompt and attachments.
func (c *Client) Create(ctx context.Context, prompt string, files []intake.File) (*Draft, error) {
	if strings.TrimSpace(prompt) == "" && len(files) == 0 {
		return nil, ErrEmptyInput
	}

	data, resp, err := c.call(ctx, drafting.AnalyzeRequest{Type: drafting.ModeCreate, Prompt: prompt, Files: files})
	if err != nil {
		return nil, err
	}
	data = drafting.NormalizeCreate(data)

	doc := &domain.DraftDocument{
		PersonalInfo: domain.FieldsFromSchema(domain.PersonalFields, data),
		AccusedInfo:  domain.FieldsFromSchema(domain.AccusedFields, data),
		Purpose:      richtext.FromPlain(data[string(domain.SectionPurpose)]),
		Facts:        richtext.FromPlain(data[string(domain.SectionFacts)]),
		Reasons:      richtext.FromPlain(data[string(domain.SectionReasons)]),
		Date:         c.now().Format(domain.DateLayout),
		FilingOffice: domain.DefaultFilingOffice,
	}

	original := &domain.OriginalInput{Prompt: prompt, Files: make([]domain.ExtractedFile, 0, len(resp.ExtractedFiles))}
	for _, f := range resp.ExtractedFiles {
		original.Files = append(original.Files, domain.ExtractedFile{Name: f.Name, Text: f.Content})
	}
	return &Draft{Document: doc, Original: original}, nil
}

// Regenerate rewrites one section and returns its new rich text content.
// Keys other than the requested section are discarded.
func (c *Client) Regenerate(ctx context.Context, section domain.Section, current string, sections domain.Sections) (string, error) {
	data, _, err := c.call(ctx, drafting.AnalyzeRequest{
		Type:           drafting.ModeRegenerate,
		Section:        string(section),
		CurrentContent: current,
		Context:        sections,
	})
	if err != nil {
		return "", err
	}
	content, err := drafting.ExtractSection(data, section)
	if err != nil {
		return "", err
	}
	return richtext.FromPlain(content), nil
}

// Chat sends one message of a section conversation and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, section domain.Section, message string, history []domain.Message, sections domain.Sections) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	turns := make([]drafting.HistoryTurn, 0, len(history))
	for _, m := range history {
		role := string(m.Role)
		if m.Role == domain.RoleAssistant {
			role = drafting.HistoryRoleAI
		}
		turns = append(turns, drafting.HistoryTurn{Role: role, Content: m.Content})
	}

	data, _, err := c.call(ctx, drafting.AnalyzeRequest{
		Type:    drafting.ModeChat,
		Section: string(section),
		Message: message,
		History: turns,
		Context: sections,
	})
	if err != nil {
		return "", err
	}
	return data[drafting.ResponseKey], nil
}
