package workspace

import (
	"log/slog"
	"sync"
)

// EventType names a workspace change.
type EventType string

const (
	EventViewChanged      EventType = "view_changed"
	EventDocumentChanged  EventType = "document_changed"
	EventBusyChanged      EventType = "busy_changed"
	EventEditorChanged    EventType = "editor_changed"
	EventLayoutChanged    EventType = "layout_changed"
	EventAssistantChanged EventType = "assistant_changed"
	EventExported         EventType = "exported"
	EventFailed           EventType = "failed"
	EventWarning          EventType = "warning"
)

// Event is published to subscribers after every state change.
type Event struct {
	Type   EventType `json:"type"`
	View   View      `json:"view"`
	Busy   Busy      `json:"busy"`
	Detail string    `json:"detail,omitempty"`
}

const subscriberBuffer = 32

// broker fans events out to subscribers. Slow subscribers drop events.
type broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[int]chan Event)}
}

func (b *broker) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *broker) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			slog.Debug("Dropping workspace event for slow subscriber", "subscriber", id, "type", e.Type)
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
