package editor

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ashureev/draft-studio/internal/richtext"
)

// SplitSentences breaks text after '.', '?' or '!' when followed by whitespace.
// Whitespace inside a sentence is collapsed to single spaces.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(text) {
			break
		}
		nr, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(nr) {
			continue
		}
		out = appendSentence(out, text[start:next])
		start = next
	}
	return appendSentence(out, text[start:])
}

func appendSentence(out []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return out
	}
	return append(out, s)
}

// AutoParagraph re-segments content into one paragraph with a line break after
// every sentence. Existing formatting is discarded.
func AutoParagraph(content string) string {
	sentences := SplitSentences(richtext.ToPlain(content))
	if len(sentences) == 0 {
		return ""
	}
	for i, s := range sentences {
		sentences[i] = html.EscapeString(s)
	}
	return "<p>" + strings.Join(sentences, "<br>") + "</p>"
}

// RequestAutoParagraph asks for confirmation before re-segmenting.
func (e *Editor) RequestAutoParagraph() error {
	if e.session == nil {
		return ErrNotOpen
	}
	if e.session.mode == DiffInline {
		return ErrReadOnly
	}
	e.session.pending = true
	return nil
}

// ConfirmAutoParagraph applies the pending re-segmentation.
func (e *Editor) ConfirmAutoParagraph() (string, error) {
	s := e.session
	if s == nil {
		return "", ErrNotOpen
	}
	if !s.pending {
		return "", ErrNoPendingOp
	}
	s.pending = false
	s.working = AutoParagraph(s.working)
	return s.working, nil
}

// DismissAutoParagraph drops the pending confirmation.
func (e *Editor) DismissAutoParagraph() {
	if e.session != nil {
		e.session.pending = false
	}
}
