package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("ForFile(%q): unexpected error: %v", tt.filename, err)
		}
		if got := typeName(p); got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, got, tt.want)
		}
	}

	if _, err := ForFile("a.exe", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	p, err := ForFile("scan.pdf", Options{FallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected fallback option to be carried to the PDF parser")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Invoice.PDF") {
		t.Error("extension check should be case-insensitive")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("zip is not supported")
	}
}

func TestDocument_Text(t *testing.T) {
	var nilDoc *Document
	if nilDoc.Text() != "" {
		t.Error("nil document should have empty text")
	}
	d := &Document{Pages: []string{"first", "second"}}
	if d.Text() != "first" {
		t.Errorf("expected first page, got %q", d.Text())
	}
}

func TestTextParser_Pages(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("page one bill\n\fpage two kwh\n\f"), "scan.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "scan" {
		t.Errorf("expected title %q, got %q", "scan", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %q", len(doc.Pages), doc.Pages)
	}
	if doc.Text() != "page one bill" {
		t.Errorf("expected first page text, got %q", doc.Text())
	}
}

func TestTextParser_BlankFirstPageKept(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("  \fsecond"), "x.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text() != "" {
		t.Errorf("expected blank first page, got %q", doc.Text())
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected no pages, got %d", len(doc.Pages))
	}
}

func TestMarkdownParser_StripsMarkup(t *testing.T) {
	input := "# Electricity **bill**\n\nUsage: *40* [kwh](http://example.com)\n\n- item one\n- item two\n\n```\ncode invoice\n```\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	text := doc.Text()
	for _, want := range []string{"Electricity bill", "40", "kwh", "item one", "item two", "code invoice"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected text to contain %q, got %q", want, text)
		}
	}
	for _, unwanted := range []string{"**", "](", "```"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("expected markup %q to be stripped, got %q", unwanted, text)
		}
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected no pages for empty input, got %d", len(doc.Pages))
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Statement</title><style>.bill{}</style></head>
<body><h1>Bank statement</h1><p>Account <b>summary</b></p><script>var invoice = 1;</script>
<ul><li>fee</li><li>interest</li></ul></body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Statement" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}
	text := doc.Text()
	for _, want := range []string{"Bank statement", "Account summary", "fee", "interest"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected text to contain %q, got %q", want, text)
		}
	}
	if strings.Contains(text, "invoice") || strings.Contains(text, ".bill") {
		t.Errorf("script and style content must be dropped, got %q", text)
	}
	if strings.Contains(text, "feeinterest") {
		t.Errorf("list items must not be glued together, got %q", text)
	}
}

func TestCSVParser(t *testing.T) {
	input := "date,description,amount\n2024-01-02,electric bill,40\n2024-01-03,water\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "ledger.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "date, description, amount\n2024-01-02, electric bill, 40\n2024-01-03, water"
	if doc.Text() != want {
		t.Errorf("expected %q, got %q", want, doc.Text())
	}
	if doc.Title != "ledger" {
		t.Errorf("expected title %q, got %q", "ledger", doc.Title)
	}
}

func TestPDFParser_InvalidInput(t *testing.T) {
	p := &PDFParser{}
	if _, err := p.Parse(strings.NewReader("not a pdf"), "broken.pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(strings.NewReader("not a zip"), "broken.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*parser.TextParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *CSVParser:
		return "*parser.CSVParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}
