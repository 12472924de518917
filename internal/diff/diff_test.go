package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stripSpans(s string) string {
	s = strings.ReplaceAll(s, `<span class="diff-added">`, "")
	return strings.ReplaceAll(s, "</span>", "")
}

func TestInlineMarksAdditions(t *testing.T) {
	t.Parallel()

	out := Inline("the cat sat", "the big cat sat")
	if !strings.Contains(out, `<span class="diff-added">`) || !strings.Contains(out, "big") {
		t.Fatalf("Inline = %q", out)
	}
	if got := stripSpans(out); got != "<p>the big cat sat</p>" {
		t.Fatalf("stripped = %q", got)
	}
}

func TestInlineOmitsDeletions(t *testing.T) {
	t.Parallel()

	if got := Inline("hello world", "hello"); got != "<p>hello</p>" {
		t.Fatalf("Inline = %q", got)
	}
}

func TestInlineEscapesAndBreaksLines(t *testing.T) {
	t.Parallel()

	if got := Inline("a<b\nc", "a<b\nc"); got != "<p>a&lt;b<br>c</p>" {
		t.Fatalf("Inline = %q", got)
	}
}

func TestSplitByWord(t *testing.T) {
	t.Parallel()

	view := DefaultEngine.Split("a b c", "a x c", ByWord)
	wantOriginal := []Segment{{OpEqual, "a "}, {OpRemoved, "b"}, {OpEqual, " c"}}
	wantCurrent := []Segment{{OpEqual, "a "}, {OpAdded, "x"}, {OpEqual, " c"}}
	if diff := cmp.Diff(wantOriginal, view.Original); diff != "" {
		t.Fatalf("original pane (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantCurrent, view.Current); diff != "" {
		t.Fatalf("current pane (-want +got):\n%s", diff)
	}
	if view.Added != 1 || view.Removed != 1 {
		t.Fatalf("added/removed = %d/%d", view.Added, view.Removed)
	}
}

func TestSplitByLine(t *testing.T) {
	t.Parallel()

	view := DefaultEngine.Split("one\ntwo\n", "one\nthree\n", ByLine)
	var original, current strings.Builder
	for _, s := range view.Original {
		original.WriteString(s.Text)
	}
	for _, s := range view.Current {
		current.WriteString(s.Text)
	}
	if original.String() != "one\ntwo\n" || current.String() != "one\nthree\n" {
		t.Fatalf("panes = %q / %q", original.String(), current.String())
	}
	if view.Added == 0 || view.Removed == 0 {
		t.Fatalf("expected changes, got %+v", view)
	}
}

func TestSplitIdentical(t *testing.T) {
	t.Parallel()

	view := DefaultEngine.Split("같은 문장입니다.", "같은 문장입니다.", ByWord)
	if view.Added != 0 || view.Removed != 0 || len(view.Original) != 1 {
		t.Fatalf("view = %+v", view)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := tokenize("피고소인은  고소인을\n기망")
	want := []string{"피고소인은", "  ", "고소인을", "\n", "기망"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokenize (-want +got):\n%s", diff)
	}
}

func TestRenderHTMLShowRemoved(t *testing.T) {
	t.Parallel()

	got := RenderHTML([]Segment{{OpEqual, "a"}, {OpRemoved, "b"}}, true)
	if got != `<p>a<span class="diff-removed">b</span></p>` {
		t.Fatalf("RenderHTML = %q", got)
	}
}
