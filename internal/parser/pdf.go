package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts the text of the first page of a PDF. It tries the Go
// library first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

const pdftotextTimeout = 30 * time.Second

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	text, err := firstPageText(data)
	if err != nil && p.FallbackPdftotext {
		text, err = firstPagePdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &Document{Title: titleFor(filename, ".pdf")}
	if t := strings.TrimSpace(text); t != "" {
		doc.Pages = []string{t}
	}
	return doc, nil
}

// firstPageText reads page 1 with ledongthuc/pdf, which panics on some
// malformed inputs.
func firstPageText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if reader.NumPage() < 1 {
		return "", nil
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func firstPagePdftotext(data []byte) (string, error) {
	// pdftotext wants a real file.
	tmp, err := os.CreateTemp("", "ddc-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pdftotextTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "pdftotext", "-f", "1", "-l", "1", "-layout", tmpPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimRight(string(out), "\f"), nil
}
