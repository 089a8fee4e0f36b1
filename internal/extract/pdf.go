// Package extract converts uploaded document bytes into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const pdfMIME = "application/pdf"

// ErrEmptyDocument is returned for zero-length uploads.
var ErrEmptyDocument = errors.New("document is empty")

// Extractor turns raw document bytes into text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// PDFExtractor extracts page text with ledongthuc/pdf.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page in page order, joined by newlines.
// Page text is kept as the PDF shows it, including indentation and trailing
// spaces. Pages without content contribute an empty line.
func (e *PDFExtractor) Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return "", fmt.Errorf("unsupported content type %s", mt.String())
	}

	// the pdf package panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		// each text object starts with a line break; the first one is not page text
		pages = append(pages, strings.TrimPrefix(content, "\n"))
	}

	return strings.Join(pages, "\n"), nil
}
