package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ashureev/draft-studio/internal/diff"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/editor"
)

// OpenEditor starts an edit session on a section of the current document.
func (c *Coordinator) OpenEditor(section domain.Section) (editor.State, error) {
	if _, err := domain.ParseSection(string(section)); err != nil {
		return editor.State{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return editor.State{}, ErrNoDocument
	}
	c.editor.Open(section, c.doc.Section(section))
	c.emitLocked(EventEditorChanged, false, "opened:"+string(section))
	return c.editor.State(), nil
}

// ErrUnknownEditorOp is returned for an editor action name that does not exist.
var ErrUnknownEditorOp = errors.New("unknown editor operation")

// EditorOp is a named editor action.
type EditorOp string

const (
	OpInlineDiffOn     EditorOp = "inline_diff_on"
	OpInlineDiffOff    EditorOp = "inline_diff_off"
	OpSplitDiffOn      EditorOp = "split_diff_on"
	OpSplitDiffOff     EditorOp = "split_diff_off"
	OpAutoParagraph    EditorOp = "auto_paragraph"
	OpConfirmParagraph EditorOp = "auto_paragraph_confirm"
	OpDismissParagraph EditorOp = "auto_paragraph_dismiss"
)

// ApplyEditorOp runs one editor action and returns the resulting state.
func (c *Coordinator) ApplyEditorOp(op EditorOp) (editor.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	switch op {
	case OpInlineDiffOn:
		_, err = c.editor.EnterInlineDiff()
	case OpInlineDiffOff:
		err = c.editor.ExitInlineDiff()
	case OpSplitDiffOn:
		_, err = c.editor.EnterSplitDiff()
	case OpSplitDiffOff:
		err = c.editor.ExitSplitDiff()
	case OpAutoParagraph:
		err = c.editor.RequestAutoParagraph()
	case OpConfirmParagraph:
		_, err = c.editor.ConfirmAutoParagraph()
	case OpDismissParagraph:
		c.editor.DismissAutoParagraph()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEditorOp, op)
	}
	if err != nil {
		return c.editor.State(), err
	}
	c.emitLocked(EventEditorChanged, false, string(op))
	return c.editor.State(), nil
}

// SetEditorContent replaces the working content of the open session.
func (c *Coordinator) SetEditorContent(content string) (editor.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editor.SetContent(content); err != nil {
		return c.editor.State(), err
	}
	c.emitLocked(EventEditorChanged, false, "content")
	return c.editor.State(), nil
}

// SplitView returns the side-by-side comparison while split mode is active.
func (c *Coordinator) SplitView() (diff.SplitView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor.SplitView()
}

// SaveEditor commits the session into the document and closes the editor.
func (c *Coordinator) SaveEditor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	section, content, err := c.editor.Save()
	if err != nil {
		return err
	}
	if err := c.doc.SetSection(section, content); err != nil {
		return err
	}
	c.emitLocked(EventDocumentChanged, true, "saved:"+string(section))
	return nil
}

// CancelEditor discards the session.
func (c *Coordinator) CancelEditor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor.Cancel()
	c.emitLocked(EventEditorChanged, false, "cancelled")
}

// ToggleColumn flips a column's visibility. A non-empty warning means the toggle was refused.
func (c *Coordinator) ToggleColumn(col editor.Column) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	warning, err := c.layout.Toggle(col)
	if err != nil {
		return "", err
	}
	if warning != "" {
		c.emitLocked(EventWarning, false, warning)
		return warning, nil
	}
	c.emitLocked(EventLayoutChanged, false, string(col))
	return "", nil
}

// ExpandColumn shows one column fullscreen.
func (c *Coordinator) ExpandColumn(col editor.Column) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.layout.Expand(col); err != nil {
		return err
	}
	c.emitLocked(EventLayoutChanged, false, "expanded:"+string(col))
	return nil
}

// CollapseColumn leaves fullscreen.
func (c *Coordinator) CollapseColumn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layout.Collapse()
	c.emitLocked(EventLayoutChanged, false, "collapsed")
}

// OpenAssistant binds the chat panel to a section.
func (c *Coordinator) OpenAssistant(section domain.Section) error {
	if _, err := domain.ParseSection(string(section)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	c.panel.Open(section)
	c.emitLocked(EventAssistantChanged, false, "opened:"+string(section))
	return nil
}

// CloseAssistant hides the chat panel.
func (c *Coordinator) CloseAssistant() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.Close()
	c.emitLocked(EventAssistantChanged, false, "closed")
}

// SendAssistant sends a chat message with the current sections as context.
func (c *Coordinator) SendAssistant(ctx context.Context, message string) (domain.Message, error) {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return domain.Message{}, ErrNoDocument
	}
	sections := c.doc.Sections()
	c.mu.Unlock()

	turn, err := c.panel.Send(ctx, message, sections)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil && !turn.Error {
		return turn, err
	}
	c.emitLocked(EventAssistantChanged, false, "message")
	return turn, err
}

// ApplyAssistant overwrites the bound section with an assistant turn.
func (c *Coordinator) ApplyAssistant(turnIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	section, content, err := c.panel.Apply(turnIndex)
	if err != nil {
		return err
	}
	if err := c.doc.SetSection(section, content); err != nil {
		return err
	}
	c.emitLocked(EventDocumentChanged, true, "applied:"+string(section))
	return nil
}

type snapshot struct {
	View     View                  `json:"view"`
	Document *domain.DraftDocument `json:"document,omitempty"`
	Original *domain.OriginalInput `json:"original,omitempty"`
}

// MarshalSnapshot encodes the persisted part of the workspace.
func (c *Coordinator) MarshalSnapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Marshal(snapshot{View: c.view, Document: c.doc.Clone(), Original: c.original.Clone()})
}

// Restore loads a snapshot produced by MarshalSnapshot.
func (c *Coordinator) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode workspace snapshot: %w", err)
	}
	view, err := ParseView(string(snap.View))
	if err != nil {
		view = ViewCompose
	}
	if snap.Document == nil {
		view = ViewCompose
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
	c.doc = snap.Document
	c.original = snap.Original
	return nil
}
