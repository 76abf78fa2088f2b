package pdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/ashwinbm/docquiz/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether the content starts with the PDF file signature.
func IsPDF(content []byte) bool {
	return bytes.HasPrefix(content, pdfMagic)
}

// Extract pulls plain text out of a PDF, one entry per page. It fails with
// ErrUnsupportedFormat when the bytes are not a PDF and ErrEmptyDocument
// when no page yields any text after normalization.
func Extract(content []byte) (pages []string, err error) {
	if !IsPDF(content) {
		return nil, domain.ErrUnsupportedFormat
	}

	// The parser panics on some malformed files instead of returning an
	// error; treat that the same as an unreadable PDF.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, domain.ErrUnsupportedFormat
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, domain.ErrUnsupportedFormat
	}

	pages = make([]string, 0, reader.NumPage())
	empty := true
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document
			pages = append(pages, "")
			continue
		}
		text = normalize(text)
		if text != "" {
			empty = false
		}
		pages = append(pages, text)
	}

	if empty {
		return nil, domain.ErrEmptyDocument
	}
	return pages, nil
}

// ExtractFrom reads all content from r and extracts it.
func ExtractFrom(r io.Reader) ([]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Extract(content)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
