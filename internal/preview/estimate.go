// Package preview lays out a draft as A4 pages and exports it to PDF.
package preview

import (
	"strings"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/richtext"
	"github.com/mattn/go-runewidth"
)

// Estimator predicts how many content pages the narrative sections fill.
// The result is an approximation and may differ from the exported PDF.
type Estimator interface {
	ContentPages(doc *domain.DraftDocument) int
}

// RuneWidthEstimator measures display width in terminal cells; Hangul counts as two.
type RuneWidthEstimator struct {
	Columns      int
	LinesPerPage int
	HeadingLines int
	ClosingLines int
}

// DefaultEstimator approximates 11pt Batang on A4 with 25mm margins.
var DefaultEstimator = RuneWidthEstimator{Columns: 84, LinesPerPage: 38, HeadingLines: 3, ClosingLines: 6}

// Lines returns the number of rendered lines of one block of rich text.
func (e RuneWidthEstimator) Lines(content string) int {
	plain := richtext.ToPlain(content)
	if strings.TrimSpace(plain) == "" {
		return 1
	}
	cols := max(e.Columns, 1)
	n := 0
	for _, line := range strings.Split(plain, "\n") {
		w := runewidth.StringWidth(line)
		n += max(1, (w+cols-1)/cols)
	}
	return n
}

// ContentPages implements Estimator.
func (e RuneWidthEstimator) ContentPages(doc *domain.DraftDocument) int {
	total := e.ClosingLines
	for _, s := range domain.AllSections {
		total += e.HeadingLines + e.Lines(doc.Section(s))
	}
	per := max(e.LinesPerPage, 1)
	return max(1, (total+per-1)/per)
}

// PageLayout is the page plan of a document.
type PageLayout struct {
	TitlePages   int `json:"titlePages"`
	ContentPages int `json:"contentPages"`
	Total        int `json:"total"`
}

// Layout returns one title/parties page followed by at least one content page.
func Layout(doc *domain.DraftDocument, est Estimator) PageLayout {
	if est == nil {
		est = DefaultEstimator
	}
	content := max(1, est.ContentPages(doc))
	return PageLayout{TitlePages: 1, ContentPages: content, Total: 1 + content}
}
