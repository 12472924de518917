package editor

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/ashureev/draft-studio/internal/diff"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestClosedEditorRejectsOperations(t *testing.T) {
	t.Parallel()

	e := New()
	if err := e.SetContent("x"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("SetContent err = %v", err)
	}
	if _, _, err := e.Save(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("Save err = %v", err)
	}
	if e.State().Open {
		t.Fatal("state reports open")
	}
}

func TestInlineDiffIsReadOnlyAndRestoresContent(t *testing.T) {
	t.Parallel()

	e := New()
	e.Open(domain.SectionFacts, "<p>the cat sat</p>")
	edited := "<p>the <strong>big</strong> cat sat</p>"
	if err := e.SetContent(edited); err != nil {
		t.Fatalf("SetContent: %v", err)
	}

	marked, err := e.EnterInlineDiff()
	if err != nil {
		t.Fatalf("EnterInlineDiff: %v", err)
	}
	if !strings.Contains(marked, `class="diff-added"`) {
		t.Fatalf("inline markup = %q", marked)
	}
	if err := e.SetContent("other"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("SetContent during diff err = %v", err)
	}
	if err := e.RequestAutoParagraph(); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("RequestAutoParagraph during diff err = %v", err)
	}
	if !e.State().ReadOnly {
		t.Fatal("state not read-only")
	}

	if err := e.ExitInlineDiff(); err != nil {
		t.Fatalf("ExitInlineDiff: %v", err)
	}
	got, _ := e.Content()
	if got != edited {
		t.Fatalf("content after exit = %q, want %q", got, edited)
	}
}

func TestInlineDiffToggleIdempotentOverManyCycles(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	words := []string{"피고소인은", "고소인을", "기망하여", "<b>금원</b>", "편취하였다.", "\n"}
	for range 50 {
		var b strings.Builder
		for range rng.Intn(12) {
			b.WriteString(words[rng.Intn(len(words))])
			b.WriteString(" ")
		}
		content := b.String()

		e := New()
		e.Open(domain.SectionPurpose, "<p>피고소인은 고소인을</p>")
		if err := e.SetContent(content); err != nil {
			t.Fatalf("SetContent: %v", err)
		}
		for range 3 {
			if _, err := e.EnterInlineDiff(); err != nil {
				t.Fatal(err)
			}
			if _, err := e.EnterInlineDiff(); err != nil {
				t.Fatal(err)
			}
			if err := e.ExitInlineDiff(); err != nil {
				t.Fatal(err)
			}
		}
		if got, _ := e.Content(); got != content {
			t.Fatalf("content = %q, want %q", got, content)
		}
	}
}

func TestSaveDuringInlineCommitsSnapshot(t *testing.T) {
	t.Parallel()

	e := New()
	e.Open(domain.SectionReasons, "<p>a</p>")
	_ = e.SetContent("<p>a b</p>")
	if _, err := e.EnterInlineDiff(); err != nil {
		t.Fatal(err)
	}

	section, content, err := e.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if section != domain.SectionReasons || content != "<p>a b</p>" {
		t.Fatalf("Save = %q, %q", section, content)
	}
	if e.IsOpen() {
		t.Fatal("editor still open after save")
	}
}

func TestSplitAndInlineAreExclusive(t *testing.T) {
	t.Parallel()

	e := New()
	e.Open(domain.SectionFacts, "<p>a b c</p>")
	_ = e.SetContent("<p>a x c</p>")

	if _, err := e.EnterInlineDiff(); err != nil {
		t.Fatal(err)
	}
	view, err := e.EnterSplitDiff()
	if err != nil {
		t.Fatalf("EnterSplitDiff: %v", err)
	}
	if e.State().Mode != DiffSplit {
		t.Fatalf("mode = %q", e.State().Mode)
	}
	if got, _ := e.Content(); got != "<p>a x c</p>" {
		t.Fatalf("split mode changed content: %q", got)
	}
	want := []diff.Segment{{Op: diff.OpEqual, Text: "a "}, {Op: diff.OpAdded, Text: "x"}, {Op: diff.OpEqual, Text: " c"}}
	if d := cmp.Diff(want, view.Current); d != "" {
		t.Fatalf("current pane (-want +got):\n%s", d)
	}

	if _, err := e.EnterInlineDiff(); err != nil {
		t.Fatal(err)
	}
	if e.State().Mode != DiffInline {
		t.Fatalf("mode = %q", e.State().Mode)
	}
	if _, err := e.SplitView(); !errors.Is(err, ErrDiffInactive) {
		t.Fatalf("SplitView err = %v", err)
	}
}

func TestCancelDiscards(t *testing.T) {
	t.Parallel()

	e := New()
	e.Open(domain.SectionFacts, "x")
	_ = e.SetContent("y")
	e.Cancel()
	if e.IsOpen() {
		t.Fatal("editor open after cancel")
	}
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"A. B! C?", []string{"A.", "B!", "C?"}},
		{"금액은 3.5억 원이다. 확인했다", []string{"금액은 3.5억 원이다.", "확인했다"}},
		{"하나.\n둘?  셋", []string{"하나.", "둘?", "셋"}},
		{"   ", nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, SplitSentences(tc.in)); diff != "" {
			t.Errorf("SplitSentences(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestAutoParagraphRequiresConfirmation(t *testing.T) {
	t.Parallel()

	e := New()
	e.Open(domain.SectionFacts, "<p>A. B! <em>C?</em></p>")
	if _, err := e.ConfirmAutoParagraph(); !errors.Is(err, ErrNoPendingOp) {
		t.Fatalf("Confirm without request err = %v", err)
	}

	if err := e.RequestAutoParagraph(); err != nil {
		t.Fatal(err)
	}
	e.DismissAutoParagraph()
	if got, _ := e.Content(); got != "<p>A. B! <em>C?</em></p>" {
		t.Fatalf("dismiss changed content: %q", got)
	}

	if err := e.RequestAutoParagraph(); err != nil {
		t.Fatal(err)
	}
	if !e.State().PendingAutoParagraph {
		t.Fatal("pending flag not set")
	}
	got, err := e.ConfirmAutoParagraph()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got != "<p>A.<br>B!<br>C?</p>" {
		t.Fatalf("auto-paragraph = %q", got)
	}
}
