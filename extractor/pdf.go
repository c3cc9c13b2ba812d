// Package extractor pulls plain text out of uploaded PDF documents.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// ErrNoText is returned for documents without an extractable text layer
var ErrNoText = errors.New("no text found in PDF")

// Extractor turns document bytes into text
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// PDFExtractor validates a PDF with pdfcpu and reads its text layer
type PDFExtractor struct {
	conf *model.Configuration
}

// NewPDFExtractor creates a PDF extractor with relaxed validation
func NewPDFExtractor() *PDFExtractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFExtractor{conf: conf}
}

// Extract returns the concatenated text of every page
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty PDF")
	}

	pages, err := api.PageCount(bytes.NewReader(data), e.conf)
	if err != nil {
		return "", fmt.Errorf("invalid PDF: %w", err)
	}
	zap.L().Info("extracting text from PDF", zap.Int("pages", pages), zap.Int("bytes", len(data)))

	text, err := plainText(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	zap.L().Info("text extracted", zap.Int("pages", pages), zap.Int("chars", len(text)))
	return text, nil
}

// plainText reads the text layer. The reader panics on some malformed
// streams, so a panic is turned into an error.
func plainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to extract plain text: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return buf.String(), nil
}
