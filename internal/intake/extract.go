package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// Placeholder texts recorded for files whose content could not be used.
const (
	TextExtractionFailed = "(내용 추출 실패)"
	TextUnsupported      = "(미지원 파일 형식)"
)

// maxConcurrentExtractions bounds the PDF parsing fan-out per request.
const maxConcurrentExtractions = 4

// Status describes how a file's text was obtained.
type Status string

const (
	StatusExtracted   Status = "extracted"
	StatusFailed      Status = "failed"
	StatusUnsupported Status = "unsupported"
)

// Extracted is the outcome for one uploaded file.
type Extracted struct {
	Name   string
	Text   string
	Status Status
}

var errEmptyPDF = errors.New("pdf contains no pages")

// ExtractAll extracts text from every file that carries data, preserving order.
// Failures never abort the batch; they degrade to a placeholder for that file.
func ExtractAll(ctx context.Context, files []File) []Extracted {
	results := make([]Extracted, len(files))
	keep := make([]bool, len(files))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExtractions)
	for i, f := range files {
		if f.Data == "" {
			slog.Debug("Skipping attachment without data", "name", f.Name)
			continue
		}
		keep[i] = true
		g.Go(func() error {
			results[i] = extractOne(f)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Extracted, 0, len(files))
	for i, r := range results {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func extractOne(f File) Extracted {
	if !isPDF(f) {
		return Extracted{Name: f.Name, Text: TextUnsupported, Status: StatusUnsupported}
	}

	slog.Info("Extracting PDF text", "name", f.Name)
	text, err := PDFText(f.Data)
	if err != nil {
		slog.Error("PDF extraction failed", "name", f.Name, "error", err)
		return Extracted{Name: f.Name, Text: TextExtractionFailed, Status: StatusFailed}
	}
	slog.Info("PDF extraction succeeded", "name", f.Name, "chars", len([]rune(text)))
	return Extracted{Name: f.Name, Text: text, Status: StatusExtracted}
}

func isPDF(f File) bool {
	return f.MimeType == "application/pdf" || strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

// PDFText decodes base64 PDF data and returns its plain text.
func PDFText(data string) (text string, err error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	if reader.NumPage() == 0 {
		return "", errEmptyPDF
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	body, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(body), nil
}

// PageCount returns the number of pages in raw PDF bytes.
func PageCount(raw []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
