// Package textract produces the best-available plain text for a PDF document.
// It tries the native text layer first and falls back to OCR when the result
// is too short to be useful. Both engines are fault-isolated: a broken or
// unreadable document yields an empty result, never an error.
package textract

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Method identifies which engine produced the acquired text.
type Method string

const (
	MethodNative Method = "native"
	MethodOCR    Method = "ocr"
	MethodNone   Method = "none"
)

func (m Method) String() string { return string(m) }

// minContentChars is the trimmed-length threshold below which the native text
// layer is considered unusable (scanned document) and OCR is attempted.
const minContentChars = 100

// Result is the outcome of text acquisition.
type Result struct {
	Text   string
	Method Method
}

// TextEngine extracts the native text layer of a document.
type TextEngine interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// OCREngine recognizes text from rendered document pages.
type OCREngine interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Acquirer coordinates the native-then-OCR cascade.
type Acquirer struct {
	native TextEngine
	ocr    OCREngine
	logger *zap.Logger
}

// NewAcquirer creates an Acquirer with the default PDF text and OCR engines.
func NewAcquirer(logger *zap.Logger) *Acquirer {
	return &Acquirer{
		native: NewPDFTextEngine(logger),
		ocr:    NewOCRPageEngine(logger),
		logger: logger,
	}
}

// NewAcquirerWithEngines creates an Acquirer with injected engines.
func NewAcquirerWithEngines(native TextEngine, ocr OCREngine, logger *zap.Logger) *Acquirer {
	return &Acquirer{native: native, ocr: ocr, logger: logger}
}

// Acquire extracts text from the document at path. It never fails: when
// neither engine yields text the result carries MethodNone and an empty
// string, and the caller must treat that as "no data available".
func (a *Acquirer) Acquire(ctx context.Context, path string) Result {
	text, err := a.native.ExtractText(ctx, path)
	if err != nil {
		a.logger.Warn("Native text extraction failed",
			zap.String("path", path),
			zap.Error(err))
		text = ""
	}

	method := MethodNative
	if len(strings.TrimSpace(text)) < minContentChars {
		a.logger.Info("Native text layer too short, attempting OCR",
			zap.String("path", path),
			zap.Int("native_chars", len(strings.TrimSpace(text))))

		ocrText, ocrErr := a.ocr.ExtractText(ctx, path)
		if ocrErr != nil {
			a.logger.Warn("OCR extraction failed",
				zap.String("path", path),
				zap.Error(ocrErr))
			ocrText = ""
		}

		// Keep whichever output is longer by trimmed character count.
		if len(strings.TrimSpace(ocrText)) > len(strings.TrimSpace(text)) {
			text = ocrText
			method = MethodOCR
		}
	}

	if strings.TrimSpace(text) == "" {
		a.logger.Warn("No text could be acquired", zap.String("path", path))
		return Result{Text: "", Method: MethodNone}
	}

	a.logger.Info("Text acquired",
		zap.String("path", path),
		zap.String("method", string(method)),
		zap.Int("chars", len(text)))
	return Result{Text: text, Method: method}
}
