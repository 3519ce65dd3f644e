package pipeline

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// ContentKind groups detected MIME types by how they are ingested.
type ContentKind string

const (
	KindPDF     ContentKind = "pdf"
	KindImage   ContentKind = "image"
	KindText    ContentKind = "text"
	KindUnknown ContentKind = "unknown"
)

// Page is the plain text of one PDF page. Numbers start at 1.
type Page struct {
	Number int
	Text   string
}

// DetectContentType sniffs the file content and returns its kind and MIME type.
func DetectContentType(filePath string) (ContentKind, string, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return KindUnknown, "", err
	}

	switch {
	case mtype.Is("application/pdf"):
		return KindPDF, mtype.String(), nil
	case strings.HasPrefix(mtype.String(), "image/"):
		return KindImage, mtype.String(), nil
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return KindText, mtype.String(), nil
		}
	}

	return KindUnknown, mtype.String(), nil
}

// ExtractPDF returns the plain text of every page of the PDF at filePath.
// Pages without a text layer are returned with empty text.
func ExtractPDF(filePath string) ([]Page, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, Page{Number: i, Text: strings.TrimSpace(text)})
	}

	return pages, nil
}
