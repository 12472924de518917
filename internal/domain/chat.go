package domain

// Role is the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Error turns are shown inline but are never sent upstream.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Error   bool   `json:"error,omitempty"`
}

// ChatSession is the assistant conversation scoped to one section.
type ChatSession struct {
	Section  Section   `json:"section"`
	Messages []Message `json:"messages"`
}

// History returns the non-error turns in order.
func (c *ChatSession) History() []Message {
	if c == nil {
		return nil
	}
	out := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Error {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Clone returns a deep copy.
func (c *ChatSession) Clone() *ChatSession {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}
