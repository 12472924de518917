package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/intake"
)

// ErrExportFailed wraps every export failure. No partial output is returned with it.
var ErrExportFailed = errors.New("export failed")

// ExportFilename is the download name of the exported document.
const ExportFilename = "legal_document.pdf"

// Rasterizer prints an HTML document to A4 portrait PDF bytes.
type Rasterizer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Result is a verified export.
type Result struct {
	PDF            []byte
	Pages          int
	EstimatedPages int
}

// Exporter renders a draft and rasterizes it.
type Exporter struct {
	renderer  *Renderer
	raster    Rasterizer
	estimator Estimator
	timeout   time.Duration
}

// NewExporter creates an exporter. A nil estimator uses DefaultEstimator.
func NewExporter(renderer *Renderer, raster Rasterizer, est Estimator, timeout time.Duration) *Exporter {
	if est == nil {
		est = DefaultEstimator
	}
	return &Exporter{renderer: renderer, raster: raster, estimator: est, timeout: timeout}
}

// Layout returns the page plan for doc.
func (e *Exporter) Layout(doc *domain.DraftDocument) PageLayout {
	return Layout(doc, e.estimator)
}

// HTML renders the preview document for doc.
func (e *Exporter) HTML(doc *domain.DraftDocument) (string, error) {
	return e.renderer.Render(doc, e.Layout(doc))
}

// Export renders doc, prints it and checks the result is a readable PDF.
func (e *Exporter) Export(ctx context.Context, doc *domain.DraftDocument) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrExportFailed)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	layout := e.Layout(doc)
	html, err := e.renderer.Render(doc, layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	start := time.Now()
	raw, err := e.raster.PrintPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterize: %w", ErrExportFailed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrExportFailed)
	}

	pages, err := intake.PageCount(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %w", ErrExportFailed, err)
	}
	if pages < layout.TitlePages+1 {
		return nil, fmt.Errorf("%w: got %d pages, want at least %d", ErrExportFailed, pages, layout.TitlePages+1)
	}

	if pages != layout.Total {
		slog.Debug("Page estimate differs from export", "estimated", layout.Total, "actual", pages)
	}
	slog.Info("Document exported", "pages", pages, "bytes", len(raw), "elapsed", time.Since(start))
	return &Result{PDF: raw, Pages: pages, EstimatedPages: layout.Total}, nil
}

// Close releases the rasterizer.
func (e *Exporter) Close() error {
	return e.raster.Close()
}
