package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the text extracted from one file. Paged formats yield one
// entry per page; everything else yields a single entry.
type Document struct {
	Title string
	Pages []string
}

// Text returns the blob used for classification: the first page.
func (d *Document) Text() string {
	if d == nil || len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0]
}

// Parser extracts text from raw document bytes.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options tunes the parsers returned by ForFile.
type Options struct {
	// FallbackPdftotext retries PDFs with the pdftotext binary when the Go
	// reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFor strips any of exts from the base name of filename.
func titleFor(filename string, exts ...string) string {
	base := filepath.Base(filename)
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

// single wraps a whole-document text as a one-page Document, or no pages
// when the text is blank.
func single(title, text string) *Document {
	doc := &Document{Title: title}
	if t := strings.TrimSpace(text); t != "" {
		doc.Pages = []string{t}
	}
	return doc
}
