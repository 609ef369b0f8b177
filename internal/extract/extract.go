package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MimePDF is the only document type the extractor accepts.
const MimePDF = "application/pdf"

var (
	// ErrUnsupportedMimeType is returned before any bytes are parsed.
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	// ErrCorruptDocument is returned when the bytes are not a readable PDF.
	ErrCorruptDocument = errors.New("corrupt document")
)

// PDFExtractor turns PDF bytes into plain text using github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// ExtractText implements the document extraction stage.
func (PDFExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	return ExtractTextFromBytes(ctx, data, mimeType)
}

// ExtractTextFromBytes extracts the text of every page, in document order.
// A PDF without a text layer yields "" and no error.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMimeType(mimeType)
	if normalized != MimePDF {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMimeType, normalized)
	}
	return extractPDF(data)
}

// NormalizeMimeType lowercases and strips parameters, e.g. "Application/PDF; x=y" -> "application/pdf".
func NormalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed object graphs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: parser panic: %v", ErrCorruptDocument, rec)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorruptDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var buf strings.Builder
	fonts := make(map[string]*pdf.Font)
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(pageText)
	}
	return buf.String(), nil
}
