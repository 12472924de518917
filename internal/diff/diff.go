// Package diff compares the original and current text of a section using sergi/go-diff.
package diff

import (
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff segment.
type Op int

const (
	OpEqual Op = iota
	OpAdded
	OpRemoved
)

// Segment is a run of text sharing one Op.
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Granularity selects the token unit of a split diff.
type Granularity int

const (
	ByWord Granularity = iota
	ByLine
)

// SplitView holds the two read-only panes of a side-by-side comparison.
// Original carries equal and removed runs; Current carries equal and added runs.
type SplitView struct {
	Original []Segment `json:"original"`
	Current  []Segment `json:"current"`
	Added    int       `json:"added"`
	Removed  int       `json:"removed"`
}

// Engine wraps a configured diffmatchpatch instance.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates an engine. A zero timeout computes exact diffs.
func NewEngine(timeout time.Duration) *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout
	return &Engine{dmp: dmp}
}

// DefaultEngine is shared by the editor.
var DefaultEngine = NewEngine(time.Second)

// Chars computes a character-level diff with semantic cleanup.
func (e *Engine) Chars(original, current string) []Segment {
	diffs := e.dmp.DiffMain(original, current, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	return toSegments(diffs)
}

// Split computes a side-by-side comparison at the given granularity.
func (e *Engine) Split(original, current string, g Granularity) SplitView {
	var diffs []diffmatchpatch.Diff
	if g == ByWord {
		var ok bool
		diffs, ok = e.words(original, current)
		if !ok {
			g = ByLine
		}
	}
	if g == ByLine {
		a, b, lineArray := e.dmp.DiffLinesToChars(original, current)
		diffs = e.dmp.DiffMain(a, b, false)
		diffs = e.dmp.DiffCharsToLines(diffs, lineArray)
	}

	var view SplitView
	for _, seg := range toSegments(diffs) {
		switch seg.Op {
		case OpEqual:
			view.Original = appendSegment(view.Original, seg)
			view.Current = appendSegment(view.Current, seg)
		case OpRemoved:
			view.Original = appendSegment(view.Original, seg)
			view.Removed++
		case OpAdded:
			view.Current = appendSegment(view.Current, seg)
			view.Added++
		}
	}
	return view
}

// maxWordTokens keeps token runes below the surrogate range.
const maxWordTokens = 0xD000

// words diffs at word granularity by mapping every distinct token to one rune.
func (e *Engine) words(original, current string) ([]diffmatchpatch.Diff, bool) {
	index := map[string]rune{}
	var tokens []string
	encode := func(s string) []rune {
		toks := tokenize(s)
		out := make([]rune, len(toks))
		for i, t := range toks {
			r, ok := index[t]
			if !ok {
				r = rune(len(tokens) + 1)
				index[t] = r
				tokens = append(tokens, t)
			}
			out[i] = r
		}
		return out
	}
	a, b := encode(original), encode(current)
	if len(tokens) >= maxWordTokens {
		return nil, false
	}

	diffs := e.dmp.DiffMainRunes(a, b, false)
	for i := range diffs {
		var sb strings.Builder
		for _, r := range diffs[i].Text {
			sb.WriteString(tokens[r-1])
		}
		diffs[i].Text = sb.String()
	}
	return diffs, true
}

// tokenize splits s into alternating word and whitespace runs.
func tokenize(s string) []string {
	var toks []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			toks = append(toks, s[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

func toSegments(diffs []diffmatchpatch.Diff) []Segment {
	out := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpAdded
		case diffmatchpatch.DiffDelete:
			op = OpRemoved
		default:
			op = OpEqual
		}
		out = appendSegment(out, Segment{Op: op, Text: d.Text})
	}
	return out
}

func appendSegment(segs []Segment, s Segment) []Segment {
	if n := len(segs); n > 0 && segs[n-1].Op == s.Op {
		segs[n-1].Text += s.Text
		return segs
	}
	return append(segs, s)
}

// Inline renders a character-level diff as read-only HTML. Additions are wrapped in
// <span class="diff-added">; deletions are omitted.
func Inline(original, current string) string {
	return RenderHTML(DefaultEngine.Chars(original, current), false)
}

// RenderHTML renders segments as a single paragraph. Removed runs are wrapped in
// <span class="diff-removed"> when showRemoved is set and dropped otherwise.
func RenderHTML(segs []Segment, showRemoved bool) string {
	var b strings.Builder
	b.WriteString("<p>")
	for _, s := range segs {
		text := strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br>")
		switch s.Op {
		case OpAdded:
			b.WriteString(`<span class="diff-added">`)
			b.WriteString(text)
			b.WriteString("</span>")
		case OpRemoved:
			if showRemoved {
				b.WriteString(`<span class="diff-removed">`)
				b.WriteString(text)
				b.WriteString("</span>")
			}
		default:
			b.WriteString(text)
		}
	}
	b.WriteString("</p>")
	return b.String()
}
