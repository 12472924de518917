package editor

import (
	"errors"
	"fmt"
)

// Column is one of the side panels of the edit view.
type Column string

const (
	ColumnOriginal Column = "original-input"
	ColumnAIOutput Column = "ai-output"
	ColumnEditor   Column = "editor"
)

// AllColumns lists the panels in display order.
var AllColumns = []Column{ColumnOriginal, ColumnAIOutput, ColumnEditor}

var ErrUnknownColumn = errors.New("unknown column")

// WarnLastColumn is returned when hiding the only visible panel.
const WarnLastColumn = "최소 한 개의 패널은 표시되어야 합니다."

// ParseColumn validates a column name.
func ParseColumn(raw string) (Column, error) {
	for _, c := range AllColumns {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, raw)
}

// Layout tracks panel visibility and the fullscreen panel.
// At least one panel is always visible.
type Layout struct {
	visible  map[Column]bool
	expanded Column
}

// NewLayout shows every panel.
func NewLayout() *Layout {
	l := &Layout{visible: make(map[Column]bool, len(AllColumns))}
	for _, c := range AllColumns {
		l.visible[c] = true
	}
	return l
}

// LayoutState is a read-only view of the layout.
type LayoutState struct {
	Columns  map[Column]bool `json:"columns"`
	Expanded Column          `json:"expanded,omitempty"`
	Rendered []Column        `json:"rendered"`
}

// State returns a copy of the layout.
func (l *Layout) State() LayoutState {
	cols := make(map[Column]bool, len(l.visible))
	for c, v := range l.visible {
		cols[c] = v
	}
	return LayoutState{Columns: cols, Expanded: l.expanded, Rendered: l.Visible()}
}

func (l *Layout) visibleCount() int {
	n := 0
	for _, v := range l.visible {
		if v {
			n++
		}
	}
	return n
}

// Toggle flips a panel. Hiding the last visible panel is refused with a warning.
func (l *Layout) Toggle(c Column) (string, error) {
	if _, err := ParseColumn(string(c)); err != nil {
		return "", err
	}
	return l.SetVisible(c, !l.visible[c])
}

// SetVisible shows or hides a panel.
func (l *Layout) SetVisible(c Column, visible bool) (string, error) {
	if _, err := ParseColumn(string(c)); err != nil {
		return "", err
	}
	if !visible && l.visible[c] && l.visibleCount() == 1 {
		return WarnLastColumn, nil
	}
	l.visible[c] = visible
	if !visible && l.expanded == c {
		l.expanded = ""
	}
	return "", nil
}

// Expand renders only c until Collapse is called.
func (l *Layout) Expand(c Column) error {
	if _, err := ParseColumn(string(c)); err != nil {
		return err
	}
	l.visible[c] = true
	l.expanded = c
	return nil
}

// Collapse leaves fullscreen.
func (l *Layout) Collapse() {
	l.expanded = ""
}

// Expanded returns the fullscreen panel, if any.
func (l *Layout) Expanded() Column { return l.expanded }

// Visible returns the panels to render, in display order.
func (l *Layout) Visible() []Column {
	if l.expanded != "" {
		return []Column{l.expanded}
	}
	out := make([]Column, 0, len(AllColumns))
	for _, c := range AllColumns {
		if l.visible[c] {
			out = append(out, c)
		}
	}
	return out
}
