package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/richtext"
)

//go:embed templates/document.html.tmpl
var documentTemplate string

// Renderer produces the self-contained HTML document used for preview and export.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("document").Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type sectionView struct {
	Number  int
	Label   string
	Content template.HTML
}

type documentView struct {
	Personal     []domain.LabeledField
	Accused      []domain.LabeledField
	Sections     []sectionView
	Date         string
	FilingOffice string
	Layout       PageLayout
}

// Render writes the HTML for doc.
func (r *Renderer) Render(doc *domain.DraftDocument, layout PageLayout) (string, error) {
	view := documentView{
		Personal:     doc.PersonalInfo,
		Accused:      doc.AccusedInfo,
		Date:         doc.Date,
		FilingOffice: doc.FilingOffice,
		Layout:       layout,
	}
	for i, s := range domain.AllSections {
		view.Sections = append(view.Sections, sectionView{
			Number: i + 1,
			Label:  s.Label(),
			Content: template.HTML(richtext.Sanitize(richtext.FromPlain(doc.Section(s)))), //nolint:gosec
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}
