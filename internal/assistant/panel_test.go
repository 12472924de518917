package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/google/go-cmp/cmp"
)

type fakeChatter struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   chan struct{}
	history [][]domain.Message
}

func (f *fakeChatter) Chat(_ context.Context, _ domain.Section, _ string, history []domain.Message, _ domain.Sections) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, history)
	return f.reply, f.err
}

func TestOpenResetsOnSectionChange(t *testing.T) {
	t.Parallel()

	p := NewPanel(&fakeChatter{reply: "답"}, nil, "u", "s")
	p.Open(domain.SectionPurpose)
	if _, err := p.Send(context.Background(), "질문", domain.Sections{}); err != nil {
		t.Fatal(err)
	}
	before := p.State().Messages

	p.Close()
	p.Open(domain.SectionPurpose)
	if diff := cmp.Diff(before, p.State().Messages); diff != "" {
		t.Fatalf("reopen changed history (-want +got):\n%s", diff)
	}

	p.Open(domain.SectionFacts)
	if n := len(p.State().Messages); n != 0 {
		t.Fatalf("messages after switching section = %d", n)
	}
	p.Open(domain.SectionPurpose)
	if n := len(p.State().Messages); n != 0 {
		t.Fatalf("history should stay reset, got %d turns", n)
	}
}

func TestResetDropsConversation(t *testing.T) {
	t.Parallel()

	p := NewPanel(&fakeChatter{reply: "답"}, nil, "u", "s")
	p.Open(domain.SectionFacts)
	if _, err := p.Send(context.Background(), "질문", domain.Sections{}); err != nil {
		t.Fatal(err)
	}

	p.Reset()
	if st := p.State(); st.Open || st.Section != "" || len(st.Messages) != 0 {
		t.Fatalf("state after reset = %+v", st)
	}
	p.Open(domain.SectionFacts)
	if n := len(p.State().Messages); n != 0 {
		t.Fatalf("reopened section resumed %d turns", n)
	}
}

func TestSendPassesPriorHistory(t *testing.T) {
	t.Parallel()

	chat := &fakeChatter{reply: "r"}
	p := NewPanel(chat, nil, "u", "s")
	p.Open(domain.SectionFacts)
	for _, m := range []string{"one", "two"} {
		if _, err := p.Send(context.Background(), m, domain.Sections{}); err != nil {
			t.Fatal(err)
		}
	}
	if len(chat.history[0]) != 0 || len(chat.history[1]) != 2 {
		t.Fatalf("history lengths = %d, %d", len(chat.history[0]), len(chat.history[1]))
	}
}

func TestSendFailureAppendsErrorTurn(t *testing.T) {
	t.Parallel()

	upstream := errors.New("timeout")
	chat := &fakeChatter{err: upstream}
	p := NewPanel(chat, nil, "u", "s")
	p.Open(domain.SectionReasons)

	turn, err := p.Send(context.Background(), "hi", domain.Sections{})
	if !errors.Is(err, upstream) {
		t.Fatalf("err = %v", err)
	}
	if !turn.Error || !strings.HasPrefix(turn.Content, ErrorTurnPrefix) {
		t.Fatalf("turn = %+v", turn)
	}
	if msgs := p.State().Messages; len(msgs) != 2 || !msgs[1].Error {
		t.Fatalf("messages = %+v", msgs)
	}

	chat.err = nil
	chat.reply = "ok"
	if _, err := p.Send(context.Background(), "again", domain.Sections{}); err != nil {
		t.Fatal(err)
	}
	if got := len(chat.history[1]); got != 1 {
		t.Fatalf("error turn leaked into history: %d turns", got)
	}
}

func TestSendInFlightRejected(t *testing.T) {
	t.Parallel()

	chat := &fakeChatter{reply: "r", block: make(chan struct{})}
	p := NewPanel(chat, nil, "u", "s")
	p.Open(domain.SectionFacts)

	done := make(chan error, 1)
	go func() {
		_, err := p.Send(context.Background(), "first", domain.Sections{})
		done <- err
	}()

	for !p.State().Sending {
		time.Sleep(time.Millisecond)
	}
	if _, err := p.Send(context.Background(), "second", domain.Sections{}); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("err = %v, want ErrSendInFlight", err)
	}
	close(chat.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if p.State().Sending {
		t.Fatal("still sending")
	}
}

func TestSendRequiresOpenPanel(t *testing.T) {
	t.Parallel()

	p := NewPanel(&fakeChatter{}, nil, "u", "s")
	if _, err := p.Send(context.Background(), "x", domain.Sections{}); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("err = %v", err)
	}
	p.Open(domain.SectionFacts)
	if _, err := p.Send(context.Background(), " ", domain.Sections{}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyClosesAndReturnsHTML(t *testing.T) {
	t.Parallel()

	p := NewPanel(&fakeChatter{reply: "피고소인을 **엄벌**에 처해주시기 바랍니다."}, nil, "u", "s")
	p.Open(domain.SectionPurpose)
	if _, err := p.Send(context.Background(), "써줘", domain.Sections{}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := p.Apply(0); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("applying a user turn err = %v", err)
	}
	section, content, err := p.Apply(1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if section != domain.SectionPurpose {
		t.Fatalf("section = %q", section)
	}
	if content != "<p>피고소인을 <strong>엄벌</strong>에 처해주시기 바랍니다.</p>" {
		t.Fatalf("content = %q", content)
	}
	if p.State().Open {
		t.Fatal("panel still open after apply")
	}
}
