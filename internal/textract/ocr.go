package textract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// OCRPageEngine renders each PDF page to an image with mupdf and runs
// character recognition on it with tesseract.
type OCRPageEngine struct {
	logger *zap.Logger
}

// NewOCRPageEngine creates a new OCR engine.
func NewOCRPageEngine(logger *zap.Logger) *OCRPageEngine {
	return &OCRPageEngine{logger: logger}
}

// ExtractText OCRs the document page by page and concatenates per-page text
// with newline separators, preserving page order. A page that fails to render
// or recognize is skipped rather than failing the whole document.
func (e *OCRPageEngine) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf for ocr: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()

	var b strings.Builder
	pageCount := doc.NumPage()
	for page := 0; page < pageCount; page++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		img, imgErr := doc.Image(page)
		if imgErr != nil {
			e.logger.Warn("Failed to render page for OCR",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(imgErr))
			continue
		}

		var buf bytes.Buffer
		if encErr := png.Encode(&buf, img); encErr != nil {
			e.logger.Warn("Failed to encode page image",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(encErr))
			continue
		}

		if setErr := client.SetImageFromBytes(buf.Bytes()); setErr != nil {
			e.logger.Warn("Failed to load page image into tesseract",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(setErr))
			continue
		}

		pageText, ocrErr := client.Text()
		if ocrErr != nil {
			e.logger.Warn("OCR failed on page",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(ocrErr))
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	e.logger.Info("OCR extraction finished",
		zap.String("path", path),
		zap.Int("pages", pageCount),
		zap.Int("chars", b.Len()))
	return b.String(), nil
}
