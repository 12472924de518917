// Package editor holds the transient edit session for one narrative section.
package editor

import (
	"errors"

	"github.com/ashureev/draft-studio/internal/diff"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/richtext"
)

var (
	ErrNotOpen      = errors.New("editor is not open")
	ErrReadOnly     = errors.New("editor is read-only while the inline diff is shown")
	ErrNoPendingOp  = errors.New("no auto-paragraph confirmation pending")
	ErrDiffInactive = errors.New("split diff is not active")
)

// DiffMode is the comparison overlay currently applied to the session.
type DiffMode string

const (
	DiffNone   DiffMode = "none"
	DiffInline DiffMode = "inline"
	DiffSplit  DiffMode = "split"
)

type session struct {
	section  domain.Section
	original string
	working  string
	snapshot string
	mode     DiffMode
	pending  bool
}

// Editor drives one edit session at a time. It is not safe for concurrent use;
// the workspace coordinator serializes access.
type Editor struct {
	engine  *diff.Engine
	session *session
}

// New creates a closed editor.
func New() *Editor {
	return &Editor{engine: diff.DefaultEngine}
}

// State is a read-only view of the editor.
type State struct {
	Open                 bool           `json:"open"`
	Section              domain.Section `json:"section,omitempty"`
	Mode                 DiffMode       `json:"mode"`
	Content              string         `json:"content,omitempty"`
	ReadOnly             bool           `json:"readOnly"`
	PendingAutoParagraph bool           `json:"pendingAutoParagraph"`
}

// State returns the current editor state.
func (e *Editor) State() State {
	if e.session == nil {
		return State{Mode: DiffNone}
	}
	s := e.session
	return State{
		Open:                 true,
		Section:              s.section,
		Mode:                 s.mode,
		Content:              s.working,
		ReadOnly:             s.mode == DiffInline,
		PendingAutoParagraph: s.pending,
	}
}

// Open starts a session on section. Any previous session is discarded.
func (e *Editor) Open(section domain.Section, content string) {
	e.session = &session{section: section, original: content, working: content, mode: DiffNone}
}

// IsOpen reports whether a session is active.
func (e *Editor) IsOpen() bool { return e.session != nil }

// Section returns the section being edited.
func (e *Editor) Section() (domain.Section, error) {
	if e.session == nil {
		return "", ErrNotOpen
	}
	return e.session.section, nil
}

// Content returns the displayed content. While the inline diff is shown this is
// the annotated markup.
func (e *Editor) Content() (string, error) {
	if e.session == nil {
		return "", ErrNotOpen
	}
	return e.session.working, nil
}

// SetContent replaces the working content.
func (e *Editor) SetContent(content string) error {
	if e.session == nil {
		return ErrNotOpen
	}
	if e.session.mode == DiffInline {
		return ErrReadOnly
	}
	e.session.working = content
	return nil
}

// EnterInlineDiff snapshots the working content and replaces it with a character
// diff against the content the session was opened with.
func (e *Editor) EnterInlineDiff() (string, error) {
	s := e.session
	if s == nil {
		return "", ErrNotOpen
	}
	switch s.mode {
	case DiffInline:
		return s.working, nil
	case DiffSplit:
		s.mode = DiffNone
	}
	s.snapshot = s.working
	s.pending = false
	s.working = diff.RenderHTML(e.engine.Chars(richtext.ToPlain(s.original), richtext.ToPlain(s.snapshot)), false)
	s.mode = DiffInline
	return s.working, nil
}

// ExitInlineDiff restores the snapshot taken on entry.
func (e *Editor) ExitInlineDiff() error {
	s := e.session
	if s == nil {
		return ErrNotOpen
	}
	if s.mode != DiffInline {
		return nil
	}
	s.working = s.snapshot
	s.snapshot = ""
	s.mode = DiffNone
	return nil
}

// EnterSplitDiff returns the side-by-side comparison of the opened and working text.
func (e *Editor) EnterSplitDiff() (diff.SplitView, error) {
	s := e.session
	if s == nil {
		return diff.SplitView{}, ErrNotOpen
	}
	if s.mode == DiffInline {
		if err := e.ExitInlineDiff(); err != nil {
			return diff.SplitView{}, err
		}
	}
	s.mode = DiffSplit
	return e.splitView(), nil
}

// SplitView recomputes the comparison while split mode is active.
func (e *Editor) SplitView() (diff.SplitView, error) {
	if e.session == nil {
		return diff.SplitView{}, ErrNotOpen
	}
	if e.session.mode != DiffSplit {
		return diff.SplitView{}, ErrDiffInactive
	}
	return e.splitView(), nil
}

func (e *Editor) splitView() diff.SplitView {
	return e.engine.Split(richtext.ToPlain(e.session.original), richtext.ToPlain(e.session.working), diff.ByWord)
}

// ExitSplitDiff leaves split mode.
func (e *Editor) ExitSplitDiff() error {
	if e.session == nil {
		return ErrNotOpen
	}
	if e.session.mode == DiffSplit {
		e.session.mode = DiffNone
	}
	return nil
}

// Save closes the session and returns the content to commit. When the inline
// diff is shown the pre-diff snapshot is committed, never the markup.
func (e *Editor) Save() (domain.Section, string, error) {
	s := e.session
	if s == nil {
		return "", "", ErrNotOpen
	}
	content := s.working
	if s.mode == DiffInline {
		content = s.snapshot
	}
	e.session = nil
	return s.section, content, nil
}

// Cancel discards the session.
func (e *Editor) Cancel() {
	e.session = nil
}
