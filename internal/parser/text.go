package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TextParser handles plain text files. Form feeds, as written by pdftotext
// and many printers' spoolers, split pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), "�"))
	}

	doc := &Document{Title: titleFor(filename, ".txt")}
	if strings.TrimSpace(string(data)) == "" {
		return doc, nil
	}
	// Blank pages are kept so that page 1 stays page 1, as for PDFs.
	for _, page := range strings.Split(strings.TrimRight(string(data), "\f\n"), "\f") {
		doc.Pages = append(doc.Pages, strings.TrimSpace(page))
	}
	return doc, nil
}
