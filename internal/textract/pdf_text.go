package textract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFTextEngine reads the native text layer of a PDF page by page.
type PDFTextEngine struct {
	logger *zap.Logger
}

// NewPDFTextEngine creates a new native text engine.
func NewPDFTextEngine(logger *zap.Logger) *PDFTextEngine {
	return &PDFTextEngine{logger: logger}
}

// ExtractText concatenates the plain text of every page, preserving page
// order with newline separators. Pages that fail to decode are skipped.
func (e *PDFTextEngine) ExtractText(ctx context.Context, path string) (text string, err error) {
	// The pdf library panics on some malformed documents; acquisition must
	// degrade to an empty result instead.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf text layer panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, pErr := p.GetPlainText(nil)
		if pErr != nil {
			e.logger.Debug("Skipping undecodable page",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(pErr))
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	e.logger.Debug("Native text layer read",
		zap.String("path", path),
		zap.Int("pages", numPages),
		zap.Int("chars", b.Len()))
	return b.String(), nil
}
