package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/pdffixture"
)

type fakeRasterizer struct {
	out    []byte
	err    error
	html   string
	closed bool
}

func (f *fakeRasterizer) PrintPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return f.out, f.err
}

func (f *fakeRasterizer) Close() error {
	f.closed = true
	return nil
}

func sampleDoc() *domain.DraftDocument {
	return &domain.DraftDocument{
		PersonalInfo: domain.FieldsFromSchema(domain.PersonalFields, map[string]string{"name": "김철수"}),
		AccusedInfo:  domain.FieldsFromSchema(domain.AccusedFields, map[string]string{"accusedName": "<박영희>"}),
		Purpose:      "<p>피고소인을 사기죄로 고소합니다.</p>",
		Facts:        `<p>범죄사실<script>alert(1)</script></p>`,
		Reasons:      "고소이유 본문",
		Date:         "2026년 3월 5일",
		FilingOffice: domain.DefaultFilingOffice,
	}
}

func newTestExporter(t *testing.T, r Rasterizer) *Exporter {
	t.Helper()
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return NewExporter(renderer, r, nil, 0)
}

func TestLinesCountsWideRunesDouble(t *testing.T) {
	t.Parallel()

	est := RuneWidthEstimator{Columns: 10, LinesPerPage: 5}
	if got := est.Lines("abcdefghij"); got != 1 {
		t.Fatalf("ascii lines = %d", got)
	}
	if got := est.Lines("가나다라마바"); got != 2 {
		t.Fatalf("hangul lines = %d", got)
	}
	if got := est.Lines("<p>a</p><p>b</p>"); got != 2 {
		t.Fatalf("paragraph lines = %d", got)
	}
	if got := est.Lines(""); got != 1 {
		t.Fatalf("empty lines = %d", got)
	}
}

func TestLayoutHasTitleAndContentPages(t *testing.T) {
	t.Parallel()

	short := Layout(sampleDoc(), nil)
	if short.TitlePages != 1 || short.ContentPages != 1 || short.Total != 2 {
		t.Fatalf("short layout = %+v", short)
	}

	doc := sampleDoc()
	doc.Facts = "<p>" + strings.Repeat("피고소인은 고소인을 기망하여 금원을 편취하였습니다. ", 400) + "</p>"
	long := Layout(doc, nil)
	if long.ContentPages < 2 || long.Total != long.ContentPages+1 {
		t.Fatalf("long layout = %+v", long)
	}
}

func TestRenderEscapesFieldsAndSanitizesSections(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	html, err := renderer.Render(sampleDoc(), PageLayout{TitlePages: 1, ContentPages: 1, Total: 2})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"고소장", "김철수", "&lt;박영희&gt;", "1. 고소취지", "<p>고소이유 본문</p>", domain.DefaultFilingOffice, "break-after: page"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Error("script survived sanitization")
	}
}

func TestExportVerifiesPDF(t *testing.T) {
	t.Parallel()

	raster := &fakeRasterizer{out: pdffixture.Pages(2)}
	exp := newTestExporter(t, raster)

	res, err := exp.Export(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Pages != 2 || res.EstimatedPages != 2 || len(res.PDF) == 0 {
		t.Fatalf("result = pages %d estimated %d bytes %d", res.Pages, res.EstimatedPages, len(res.PDF))
	}
	if !strings.Contains(raster.html, "content-page") {
		t.Fatal("rasterizer did not receive the rendered document")
	}

	if err := exp.Close(); err != nil || !raster.closed {
		t.Fatalf("Close = %v, closed %v", err, raster.closed)
	}
}

func TestExportFailuresProduceNoOutput(t *testing.T) {
	t.Parallel()

	cases := map[string]*fakeRasterizer{
		"rasterizer error": {err: errors.New("chrome crashed")},
		"empty output":     {out: nil},
		"not a pdf":        {out: []byte("<html>")},
		"single page":      {out: pdffixture.Pages(1)},
	}
	for name, raster := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			res, err := newTestExporter(t, raster).Export(context.Background(), sampleDoc())
			if !errors.Is(err, ErrExportFailed) {
				t.Fatalf("err = %v, want ErrExportFailed", err)
			}
			if res != nil {
				t.Fatal("partial result returned")
			}
		})
	}
}
