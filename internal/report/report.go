// Package report renders classification results for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/dgallion1/docsort/internal/mover"
	"github.com/dgallion1/docsort/internal/pipeline"
	"github.com/dgallion1/docsort/internal/rules"
)

// Format is the report output type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// ColorEnabled reports whether f is a terminal that should get styled output.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Options controls what the renderers include.
type Options struct {
	// ShowUnmatched lists unclassified and failed documents too.
	ShowUnmatched bool
	Color         bool

	// Filed holds the filing action taken for each source, if any.
	Filed map[string]mover.Action
}

type styles struct {
	label   lipgloss.Style
	path    lipgloss.Style
	dest    lipgloss.Style
	keyword lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		label:   r.NewStyle().Bold(true),
		path:    r.NewStyle().Foreground(lipgloss.Color("12")),
		dest:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		keyword: r.NewStyle().Foreground(lipgloss.Color("8")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
		err:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Text writes one block per matched document:
//
//	 src: inbox/march.pdf
//	dest: "bills" using keywords: ["bill"]
//	dest: "bills/electric" using keywords: ["bill", "kwh"]
//
// followed by a blank line. Documents without a match are skipped unless
// ShowUnmatched is set.
func Text(w io.Writer, results []pipeline.Result, opts Options) error {
	st := newStyles(w, opts.Color)
	var b strings.Builder
	for _, res := range results {
		if len(res.Matches) == 0 && !opts.ShowUnmatched {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", st.label.Render(" src:"), st.path.Render(res.Source))
		switch res.Status {
		case pipeline.StatusFailed:
			fmt.Fprintf(&b, "%s %s\n", st.err.Render("fail:"), res.Error)
		case pipeline.StatusUnclassified:
			fmt.Fprintf(&b, "%s\n", st.muted.Render("dest: none"))
		}
		for _, m := range res.Matches {
			fmt.Fprintf(&b, "%s %s %s\n",
				st.label.Render("dest:"),
				st.dest.Render(fmt.Sprintf("%q", m.Destination)),
				st.keyword.Render("using keywords: "+m.KeywordList()))
		}
		if res.Status == pipeline.StatusAmbiguous {
			fmt.Fprintf(&b, "%s\n", st.warn.Render(fmt.Sprintf("note: %d destinations match, not filed", len(res.Matches))))
		}
		if act, ok := opts.Filed[res.Source]; ok {
			verb := "filed:"
			if act.DryRun {
				verb = "would file:"
			}
			fmt.Fprintf(&b, "%s %s\n", st.muted.Render(verb), st.path.Render(act.Target))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Summary writes a one-line count of documents per status.
func Summary(w io.Writer, results []pipeline.Result) error {
	counts := map[pipeline.Status]int{}
	for _, res := range results {
		counts[res.Status]++
	}
	_, err := fmt.Fprintf(w, "%d documents: %d classified, %d ambiguous, %d unclassified, %d failed\n",
		len(results),
		counts[pipeline.StatusClassified],
		counts[pipeline.StatusAmbiguous],
		counts[pipeline.StatusUnclassified],
		counts[pipeline.StatusFailed])
	return err
}

type jsonEntry struct {
	pipeline.Result
	Filed *mover.Action `json:"filed,omitempty"`
}

// JSON writes all results, unmatched ones included, as an indented array.
func JSON(w io.Writer, results []pipeline.Result, opts Options) error {
	entries := make([]jsonEntry, len(results))
	for i, res := range results {
		entries[i] = jsonEntry{Result: res}
		if act, ok := opts.Filed[res.Source]; ok {
			entries[i].Filed = &act
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Rules writes the compiled rule list, one rule per line.
func Rules(w io.Writer, rs []rules.Rule) error {
	var b strings.Builder
	for _, r := range rs {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RulesJSON writes the compiled rule list as JSON.
func RulesJSON(w io.Writer, rs []rules.Rule) error {
	if rs == nil {
		rs = []rules.Rule{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}
