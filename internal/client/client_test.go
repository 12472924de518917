package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/drafting"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/google/go-cmp/cmp"
)

type transportFunc func(ctx context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error)

func (f transportFunc) Analyze(ctx context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
	return f(ctx, req)
}

func fixedClock(c *Client) {
	c.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
}

func TestCreateRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	called := false
	c := New(transportFunc(func(context.Context, drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		called = true
		return nil, nil
	}))
	if _, err := c.Create(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if called {
		t.Fatal("transport must not be called for empty input")
	}
}

func TestCreateBuildsDocument(t *testing.T) {
	t.Parallel()

	var got drafting.AnalyzeRequest
	c := New(transportFunc(func(_ context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		got = req
		return &drafting.AnalyzeResponse{
			Success:        true,
			Data:           map[string]string{"name": "김철수", "accusedName": "박영희", "facts": "첫 문단\n\n둘째 문단", "extra": "x"},
			ExtractedFiles: []drafting.ExtractedFile{{Name: "a.pdf", Content: "본문"}},
		}, nil
	}))
	fixedClock(c)

	files := []intake.File{{Name: "a.pdf", MimeType: "application/pdf", Data: "AAAA"}}
	draft, err := c.Create(context.Background(), "사기", files)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Type != drafting.ModeCreate || got.Prompt != "사기" || len(got.Files) != 1 {
		t.Fatalf("request = %+v", got)
	}

	doc := draft.Document
	if len(doc.PersonalInfo) != len(domain.PersonalFields) || len(doc.AccusedInfo) != len(domain.AccusedFields) {
		t.Fatalf("field counts = %d/%d", len(doc.PersonalInfo), len(doc.AccusedInfo))
	}
	if doc.PersonalInfo[0].Value != "김철수" || doc.PersonalInfo[1].Value != "" {
		t.Fatalf("personal = %+v", doc.PersonalInfo[:2])
	}
	if doc.AccusedInfo[0].Value != "박영희" {
		t.Fatalf("accused = %+v", doc.AccusedInfo[0])
	}
	if doc.Facts != "<p>첫 문단</p><p>둘째 문단</p>" || doc.Purpose != "" {
		t.Fatalf("sections = %q / %q", doc.Purpose, doc.Facts)
	}
	if doc.Date != "2026년 3월 5일" || doc.FilingOffice != domain.DefaultFilingOffice {
		t.Fatalf("date/office = %q / %q", doc.Date, doc.FilingOffice)
	}

	want := &domain.OriginalInput{Prompt: "사기", Files: []domain.ExtractedFile{{Name: "a.pdf", Text: "본문"}}}
	if diff := cmp.Diff(want, draft.Original); diff != "" {
		t.Fatalf("original mismatch (-want +got):\n%s", diff)
	}
}

func TestFailureEnvelopeIsUpstreamError(t *testing.T) {
	t.Parallel()

	c := New(transportFunc(func(context.Context, drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		return &drafting.AnalyzeResponse{Success: false, Error: "quota exceeded"}, nil
	}))
	_, err := c.Create(context.Background(), "x", nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if err.Error() != "draft service failed: quota exceeded" {
		t.Fatalf("err = %q", err.Error())
	}
}

func TestRegenerateDiscardsOtherSections(t *testing.T) {
	t.Parallel()

	c := New(transportFunc(func(_ context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		if req.Section != "reasons" || req.Context.Facts != "F" {
			t.Errorf("request = %+v", req)
		}
		return &drafting.AnalyzeResponse{Success: true, Data: map[string]string{"reasons": "새 이유", "facts": "ignored"}}, nil
	}))

	content, err := c.Regenerate(context.Background(), domain.SectionReasons, "old", domain.Sections{Facts: "F"})
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if content != "<p>새 이유</p>" {
		t.Fatalf("content = %q", content)
	}
}

func TestRegenerateMissingSection(t *testing.T) {
	t.Parallel()

	c := New(transportFunc(func(context.Context, drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		return &drafting.AnalyzeResponse{Success: true, Data: map[string]string{}}, nil
	}))
	if _, err := c.Regenerate(context.Background(), domain.SectionFacts, "", domain.Sections{}); !errors.Is(err, ErrSectionMissing) {
		t.Fatalf("err = %v, want ErrSectionMissing", err)
	}
}

func TestChatSendsHistoryWithBrowserRoles(t *testing.T) {
	t.Parallel()

	var got drafting.AnalyzeRequest
	c := New(transportFunc(func(_ context.Context, req drafting.AnalyzeRequest) (*drafting.AnalyzeResponse, error) {
		got = req
		return &drafting.AnalyzeResponse{Success: true, Data: map[string]string{"response": "답변"}}, nil
	}))

	history := []domain.Message{{Role: domain.RoleUser, Content: "q"}, {Role: domain.RoleAssistant, Content: "a"}}
	reply, err := c.Chat(context.Background(), domain.SectionPurpose, "다음", history, domain.Sections{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "답변" {
		t.Fatalf("reply = %q", reply)
	}
	want := []drafting.HistoryTurn{{Role: "user", Content: "q"}, {Role: "ai", Content: "a"}}
	if diff := cmp.Diff(want, got.History); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalTransportPlaceholder(t *testing.T) {
	t.Parallel()

	c := New(NewLocalTransport(drafting.NewService(nil)))
	draft, err := c.Create(context.Background(), "x", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if draft.Document.PersonalInfo[0].Value != "홍길동(모의)" {
		t.Fatalf("name = %q", draft.Document.PersonalInfo[0].Value)
	}

	_, err = c.Regenerate(context.Background(), domain.Section("bogus"), "", domain.Sections{})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestHTTPTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != AnalyzePath || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("missing custom header")
		}
		var req drafting.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Type == drafting.ModeChat {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(drafting.AnalyzeResponse{Success: false, Error: "boom"})
			return
		}
		_ = json.NewEncoder(w).Encode(drafting.AnalyzeResponse{Success: true, Data: map[string]string{"purpose": "P"}})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", 5*time.Second)
	tr.SetHeader("X-Test", "1")
	c := New(tr)

	content, err := c.Regenerate(context.Background(), domain.SectionPurpose, "", domain.Sections{})
	if err != nil || content != "<p>P</p>" {
		t.Fatalf("Regenerate = %q, %v", content, err)
	}

	_, err = c.Chat(context.Background(), domain.SectionPurpose, "hi", nil, domain.Sections{})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
