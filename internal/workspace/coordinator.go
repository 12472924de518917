// Package workspace owns the draft of one tab session and coordinates the
// compose, edit and analysis views around it.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/draft-studio/internal/assistant"
	"github.com/ashureev/draft-studio/internal/client"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/editor"
	"github.com/ashureev/draft-studio/internal/intake"
	"github.com/ashureev/draft-studio/internal/preview"
)

var (
	ErrBusy        = errors.New("operation already in progress")
	ErrNoDocument  = errors.New("no document has been drafted yet")
	ErrUnknownView = errors.New("unknown view")
	// ErrStale is returned when the document was replaced while a flow was in flight.
	ErrStale = errors.New("document was replaced while the request was running")
)

// View is a top-level screen.
type View string

const (
	ViewCompose  View = "compose"
	ViewEdit     View = "edit"
	ViewAnalysis View = "analysis"
)

// ParseView validates a view name.
func ParseView(raw string) (View, error) {
	switch View(raw) {
	case ViewCompose, ViewEdit, ViewAnalysis:
		return View(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, raw)
	}
}

// Drafter creates drafts and regenerates sections. *client.Client satisfies it.
type Drafter interface {
	Create(ctx context.Context, prompt string, files []intake.File) (*client.Draft, error)
	Regenerate(ctx context.Context, section domain.Section, current string, sections domain.Sections) (string, error)
}

// Exporter lays out and exports documents. *preview.Exporter satisfies it.
type Exporter interface {
	Layout(doc *domain.DraftDocument) preview.PageLayout
	HTML(doc *domain.DraftDocument) (string, error)
	Export(ctx context.Context, doc *domain.DraftDocument) (*preview.Result, error)
}

// Busy lists the flows currently in flight.
type Busy struct {
	Creating     bool             `json:"creating"`
	Regenerating []domain.Section `json:"regenerating"`
	Exporting    bool             `json:"exporting"`
	Chatting     bool             `json:"chatting"`
}

// State is a read-only snapshot of the workspace.
type State struct {
	View      View                  `json:"view"`
	Document  *domain.DraftDocument `json:"document,omitempty"`
	Original  *domain.OriginalInput `json:"original,omitempty"`
	Pages     *preview.PageLayout   `json:"pages,omitempty"`
	Busy      Busy                  `json:"busy"`
	Editor    editor.State          `json:"editor"`
	Layout    editor.LayoutState    `json:"layout"`
	Assistant assistant.State       `json:"assistant"`
}

// Coordinator exclusively owns the document and original input of one session.
// Its lock is never held across network calls.
type Coordinator struct {
	mu       sync.Mutex
	drafter  Drafter
	exporter Exporter
	panel    *assistant.Panel
	editor   *editor.Editor
	layout   *editor.Layout

	view         View
	doc          *domain.DraftDocument
	original     *domain.OriginalInput
	creating     bool
	regenerating map[domain.Section]bool
	exporting    bool

	events   *broker
	onChange func()
}

// NewCoordinator creates a workspace in the compose view.
func NewCoordinator(drafter Drafter, exporter Exporter, panel *assistant.Panel) *Coordinator {
	return &Coordinator{
		drafter:      drafter,
		exporter:     exporter,
		panel:        panel,
		editor:       editor.New(),
		layout:       editor.NewLayout(),
		view:         ViewCompose,
		regenerating: make(map[domain.Section]bool),
		events:       newBroker(),
	}
}

// OnChange registers a hook run after every document or view change.
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Subscribe returns a channel of events and a function that ends the subscription.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	return c.events.subscribe()
}

// Close ends all subscriptions.
func (c *Coordinator) Close() {
	c.events.close()
}

// State returns a snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Coordinator) stateLocked() State {
	st := State{
		View:      c.view,
		Busy:      c.busyLocked(),
		Editor:    c.editor.State(),
		Layout:    c.layout.State(),
		Assistant: c.panel.State(),
	}
	if c.doc != nil {
		st.Document = c.doc.Clone()
		pages := c.exporter.Layout(c.doc)
		st.Pages = &pages
	}
	if c.original != nil {
		st.Original = c.original.Clone()
	}
	return st
}

func (c *Coordinator) busyLocked() Busy {
	b := Busy{Creating: c.creating, Exporting: c.exporting, Chatting: c.panel.State().Sending, Regenerating: []domain.Section{}}
	for _, s := range domain.AllSections {
		if c.regenerating[s] {
			b.Regenerating = append(b.Regenerating, s)
		}
	}
	return b
}

// emitLocked publishes an event. persist marks changes that must be saved.
func (c *Coordinator) emitLocked(typ EventType, persist bool, detail string) {
	c.events.publish(Event{Type: typ, View: c.view, Busy: c.busyLocked(), Detail: detail})
	if persist && c.onChange != nil {
		go c.onChange()
	}
}

// ShowView switches views. Edit and analysis require a document.
func (c *Coordinator) ShowView(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v != ViewCompose && c.doc == nil {
		return ErrNoDocument
	}
	c.view = v
	c.emitLocked(EventViewChanged, true, string(v))
	return nil
}

// Compose drafts a new document. Only a concurrent compose is blocked.
// On success the previous document and original input are replaced and the edit view opens.
func (c *Coordinator) Compose(ctx context.Context, prompt string, files []intake.File) error {
	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return ErrBusy
	}
	c.creating = true
	c.emitLocked(EventBusyChanged, false, "creating")
	c.mu.Unlock()

	draft, err := c.drafter.Create(ctx, prompt, files)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.creating = false
	if err != nil {
		c.emitLocked(EventFailed, false, err.Error())
		return fmt.Errorf("compose: %w", err)
	}

	c.doc = draft.Document
	c.original = draft.Original
	c.editor.Cancel()
	c.panel.Reset()
	c.view = ViewEdit
	slog.Info("Draft composed", "files", len(files), "view", c.view)
	c.emitLocked(EventDocumentChanged, true, "created")
	return nil
}

// Regenerate rewrites one section. Each section has its own in-flight flag and the
// reply only ever writes that section of the document it started on.
func (c *Coordinator) Regenerate(ctx context.Context, section domain.Section) error {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return ErrNoDocument
	}
	if c.regenerating[section] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.regenerating[section] = true
	doc := c.doc
	current := c.doc.Section(section)
	sections := c.doc.Sections()
	c.emitLocked(EventBusyChanged, false, "regenerating:"+string(section))
	c.mu.Unlock()

	content, err := c.drafter.Regenerate(ctx, section, current, sections)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.regenerating, section)
	if err != nil {
		c.emitLocked(EventFailed, false, err.Error())
		return fmt.Errorf("regenerate %s: %w", section, err)
	}
	if c.doc != doc {
		slog.Warn("Dropping regenerated section for replaced document", "section", section)
		c.emitLocked(EventFailed, false, ErrStale.Error())
		return fmt.Errorf("regenerate %s: %w", section, ErrStale)
	}
	if err := c.doc.SetSection(section, content); err != nil {
		return err
	}
	c.emitLocked(EventDocumentChanged, true, "regenerated:"+string(section))
	return nil
}

// Export renders the current document to PDF.
func (c *Coordinator) Export(ctx context.Context) (*preview.Result, error) {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return nil, ErrNoDocument
	}
	if c.exporting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.exporting = true
	doc := c.doc.Clone()
	c.emitLocked(EventBusyChanged, false, "exporting")
	c.mu.Unlock()

	res, err := c.exporter.Export(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.exporting = false
	if err != nil {
		c.emitLocked(EventFailed, false, err.Error())
		return nil, err
	}
	c.emitLocked(EventExported, false, fmt.Sprintf("%d", res.Pages))
	return res, nil
}

// PreviewHTML renders the preview document.
func (c *Coordinator) PreviewHTML() (string, error) {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return "", ErrNoDocument
	}
	doc := c.doc.Clone()
	c.mu.Unlock()
	return c.exporter.HTML(doc)
}

// AddField appends a party field.
func (c *Coordinator) AddField(g domain.FieldGroup, label, placeholder string) (domain.LabeledField, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return domain.LabeledField{}, ErrNoDocument
	}
	f, err := c.doc.AddField(g, label, placeholder)
	if err != nil {
		return domain.LabeledField{}, err
	}
	c.emitLocked(EventDocumentChanged, true, "field_added")
	return f, nil
}

// RemoveField deletes a party field.
func (c *Coordinator) RemoveField(g domain.FieldGroup, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	if err := c.doc.RemoveField(g, id); err != nil {
		return err
	}
	c.emitLocked(EventDocumentChanged, true, "field_removed")
	return nil
}

// UpdateField changes a field's label and value.
func (c *Coordinator) UpdateField(g domain.FieldGroup, id, label, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	if err := c.doc.UpdateField(g, id, label, value); err != nil {
		return err
	}
	c.emitLocked(EventDocumentChanged, true, "field_updated")
	return nil
}

// SetFilingDetails changes the date and filing office shown on the document.
func (c *Coordinator) SetFilingDetails(date, office string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	if date != "" {
		c.doc.Date = date
	}
	if office != "" {
		c.doc.FilingOffice = office
	}
	c.emitLocked(EventDocumentChanged, true, "filing_details")
	return nil
}
