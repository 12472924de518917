package drafting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/ashureev/draft-studio/internal/llm"
)

// Service answers analyze requests.
type Service struct {
	provider llm.Provider
}

// NewService creates a drafting service. A nil provider serves placeholder content.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// AIEnabled reports whether a model backs the service.
func (s *Service) AIEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider, or "placeholder".
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "placeholder"
	}
	return s.provider.Name()
}

// Model returns the configured model name, empty in placeholder mode.
func (s *Service) Model() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Model()
}

// Analyze dispatches on req.Type. Validation failures are *RequestError values.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if req.Type == "" {
		req.Type = ModeCreate
	}

	start := time.Now()
	var (
		resp *AnalyzeResponse
		err  error
	)
	switch req.Type {
	case ModeCreate:
		resp, err = s.create(ctx, req)
	case ModeRegenerate:
		resp, err = s.regenerate(ctx, req)
	case ModeChat:
		resp, err = s.chat(ctx, req)
	default:
		return nil, badRequest(fmt.Sprintf("unknown request type %q", req.Type))
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Analyze request served",
		"type", req.Type,
		"provider", s.ProviderName(),
		"files", len(req.Files),
		"elapsed", time.Since(start),
	)
	return resp, nil
}

func (s *Service) create(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" && len(req.Files) == 0 {
		return nil, badRequest("prompt or files required")
	}

	extracted := intake.ExtractAll(ctx, req.Files)
	files := make([]ExtractedFile, 0, len(extracted))
	for _, e := range extracted {
		files = append(files, ExtractedFile{Name: e.Name, Content: e.Text})
	}

	if s.provider == nil {
		slog.Warn("No LLM API key configured, returning placeholder draft")
		return &AnalyzeResponse{Success: true, Data: placeholderCreate(), ExtractedFiles: files}, nil
	}

	text, err := s.provider.Complete(ctx, llm.Request{
		System:   createSystemPrompt,
		Messages: []llm.Message{{Role: "user", Content: createUserPrompt(req.Prompt, extracted)}},
		JSON:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	data, err := decodeObject(text)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &AnalyzeResponse{Success: true, Data: NormalizeCreate(data), ExtractedFiles: files}, nil
}

func (s *Service) regenerate(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	section, err := domain.ParseSection(req.Section)
	if err != nil {
		return nil, badRequest(err.Error())
	}

	if s.provider == nil {
		return &AnalyzeResponse{Success: true, Data: placeholderRegenerate(section)}, nil
	}

	text, err := s.provider.Complete(ctx, llm.Request{
		System: regenerateSystemPrompt(section, req.CurrentContent),
		Messages: []llm.Message{{
			Role:    "user",
			Content: regenerateUserPrompt(section, req.CurrentContent, req.Context),
		}},
		JSON: true,
	})
	if err != nil {
		return nil, fmt.Errorf("regenerate %s: %w", section, err)
	}
	data, err := decodeObject(text)
	if err != nil {
		return nil, fmt.Errorf("regenerate %s: %w", section, err)
	}
	if len(data) > 1 {
		slog.Warn("Regenerate reply carried extra keys", "section", section, "keys", len(data))
	}
	content, err := ExtractSection(data, section)
	if err != nil {
		return nil, err
	}
	return &AnalyzeResponse{Success: true, Data: map[string]string{string(section): content}}, nil
}

func (s *Service) chat(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	section, err := domain.ParseSection(req.Section)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, badRequest("message is required")
	}

	if s.provider == nil {
		return &AnalyzeResponse{Success: true, Data: placeholderChat(section)}, nil
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == HistoryRoleAI || turn.Role == string(domain.RoleAssistant) {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	text, err := s.provider.Complete(ctx, llm.Request{
		System:   chatSystemPrompt(section, req.Context),
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat %s: %w", section, err)
	}
	return &AnalyzeResponse{Success: true, Data: map[string]string{ResponseKey: text}}, nil
}
