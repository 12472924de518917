// Package assistant implements the per-section chat panel.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/richtext"
)

var (
	ErrNotOpen       = errors.New("assistant panel is not open")
	ErrSendInFlight  = errors.New("a message is already being sent")
	ErrEmptyMessage  = errors.New("message is required")
	ErrNotApplicable = errors.New("turn cannot be applied to the section")
)

// ErrorTurnPrefix starts the content of an inline error turn.
const ErrorTurnPrefix = "오류가 발생했습니다: "

// Chatter answers one chat turn. *client.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, section domain.Section, message string, history []domain.Message, sections domain.Sections) (string, error)
}

// Panel is the chat assistant bound to one section at a time.
type Panel struct {
	mu        sync.Mutex
	chat      Chatter
	log       ConversationLogger
	userID    string
	sessionID string

	session  *domain.ChatSession
	open     bool
	inFlight bool
}

// NewPanel creates a closed panel.
func NewPanel(chat Chatter, log ConversationLogger, userID, sessionID string) *Panel {
	if log == nil {
		log = noopConversationLogger{}
	}
	return &Panel{chat: chat, log: log, userID: userID, sessionID: sessionID}
}

// State is a read-only view of the panel.
type State struct {
	Open     bool             `json:"open"`
	Section  domain.Section   `json:"section,omitempty"`
	Messages []domain.Message `json:"messages"`
	Sending  bool             `json:"sending"`
}

// State returns a copy of the panel state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := State{Open: p.open, Sending: p.inFlight, Messages: []domain.Message{}}
	if p.session != nil {
		st.Section = p.session.Section
		if msgs := p.session.Clone().Messages; msgs != nil {
			st.Messages = msgs
		}
	}
	return st
}

// Open shows the panel for section. Reopening the same section resumes its history;
// a different section starts an empty conversation.
func (p *Panel) Open(section domain.Section) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil || p.session.Section != section {
		p.session = &domain.ChatSession{Section: section}
	}
	p.open = true
}

// Close hides the panel and keeps the history.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

// Reset drops the conversation and closes the panel. A reply still in flight lands
// in the discarded session.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	p.open = false
}

// Send appends the user turn, asks for a reply and appends it. On failure an error
// turn is appended instead and the error is returned alongside it.
func (p *Panel) Send(ctx context.Context, message string, sections domain.Sections) (domain.Message, error) {
	if strings.TrimSpace(message) == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	p.mu.Lock()
	if !p.open || p.session == nil {
		p.mu.Unlock()
		return domain.Message{}, ErrNotOpen
	}
	if p.inFlight {
		p.mu.Unlock()
		return domain.Message{}, ErrSendInFlight
	}
	sess := p.session
	history := sess.History()
	sess.Messages = append(sess.Messages, domain.Message{Role: domain.RoleUser, Content: message})
	p.inFlight = true
	p.mu.Unlock()

	p.logTurn(sess.Section, "outbound", "chat_user_message", message, nil)

	reply, err := p.chat.Chat(ctx, sess.Section, message, history, sections)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if err != nil {
		turn := domain.Message{Role: domain.RoleAssistant, Content: ErrorTurnPrefix + err.Error(), Error: true}
		sess.Messages = append(sess.Messages, turn)
		slog.Warn("Assistant chat failed", "user_id", p.userID, "section", sess.Section, "error", err)
		p.logTurn(sess.Section, "inbound", "chat_error", err.Error(), nil)
		return turn, fmt.Errorf("chat %s: %w", sess.Section, err)
	}

	turn := domain.Message{Role: domain.RoleAssistant, Content: reply}
	sess.Messages = append(sess.Messages, turn)
	p.logTurn(sess.Section, "inbound", "chat_assistant_message", reply, map[string]any{"turns": len(sess.Messages)})
	return turn, nil
}

// Apply returns the rich text content of an assistant turn for the bound section
// and closes the panel. The caller overwrites the section with it.
func (p *Panel) Apply(turnIndex int) (domain.Section, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return "", "", ErrNotOpen
	}
	if turnIndex < 0 || turnIndex >= len(p.session.Messages) {
		return "", "", fmt.Errorf("%w: turn %d out of range", ErrNotApplicable, turnIndex)
	}
	turn := p.session.Messages[turnIndex]
	if turn.Role != domain.RoleAssistant || turn.Error {
		return "", "", fmt.Errorf("%w: turn %d is not an assistant reply", ErrNotApplicable, turnIndex)
	}

	content := replyToHTML(turn.Content)
	p.open = false
	p.logTurn(p.session.Section, "outbound", "section_applied", turn.Content, map[string]any{"turn": turnIndex})
	return p.session.Section, content, nil
}

func replyToHTML(reply string) string {
	if richtext.LooksLikeHTML(reply) {
		return reply
	}
	out, err := richtext.FromMarkdown(reply)
	if err != nil || out == "" {
		return richtext.FromPlain(reply)
	}
	return out
}

func (p *Panel) logTurn(section domain.Section, direction, eventType, content string, meta map[string]any) {
	p.log.Log(ConversationLogEvent{
		UserID:     p.userID,
		SessionID:  p.sessionID,
		Channel:    "assistant",
		Direction:  direction,
		EventType:  eventType,
		Section:    string(section),
		ContentRaw: content,
		Meta:       meta,
	})
}
