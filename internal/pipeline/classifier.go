package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/docsort/internal/parser"
	"github.com/dgallion1/docsort/internal/rules"
)

// Status is the outcome of classifying one document.
type Status string

const (
	StatusClassified   Status = "classified"
	StatusAmbiguous    Status = "ambiguous"
	StatusUnclassified Status = "unclassified"
	StatusFailed       Status = "failed"
)

// StatusFor derives the outcome from the matcher output alone.
func StatusFor(matches []rules.Rule) Status {
	switch len(matches) {
	case 0:
		return StatusUnclassified
	case 1:
		return StatusClassified
	default:
		return StatusAmbiguous
	}
}

// Result is the classification of one document.
type Result struct {
	Source  string        `json:"source"`
	Status  Status        `json:"status"`
	Matches []rules.Rule  `json:"matches"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"-"`
}

// Destination returns the single matched rule of a classified result.
func (r Result) Destination() (rules.Rule, bool) {
	if r.Status != StatusClassified {
		return rules.Rule{}, false
	}
	return r.Matches[0], true
}

func failed(source string, err error) Result {
	return Result{
		Source:  source,
		Status:  StatusFailed,
		Matches: []rules.Rule{},
		Error:   err.Error(),
	}
}

// Classifier extracts text from documents and matches it against compiled
// rules. It holds no per-document state and is safe for concurrent use.
type Classifier struct {
	matcher *rules.Matcher
	opts    parser.Options
	stats   *Stats
	log     *slog.Logger
}

// NewClassifier wires a matcher to the parsers. stats may be nil.
func NewClassifier(m *rules.Matcher, opts parser.Options, stats *Stats, log *slog.Logger) *Classifier {
	return &Classifier{matcher: m, opts: opts, stats: stats, log: log}
}

// Rules returns the compiled rules in order.
func (c *Classifier) Rules() []rules.Rule {
	return c.matcher.Rules()
}

// Stats returns the latency recorder, or nil when none was configured.
func (c *Classifier) Stats() *Stats {
	return c.stats
}

// Extract returns the classification text of a document, choosing the
// parser from the source name.
func (c *Classifier) Extract(source string, r io.Reader) (string, error) {
	p, err := parser.ForFile(source, c.opts)
	if err != nil {
		return "", err
	}
	doc, err := p.Parse(r, source)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// Match classifies already extracted text.
func (c *Classifier) Match(source, text string) Result {
	matches := c.matcher.Match(text)
	return Result{Source: source, Status: StatusFor(matches), Matches: matches}
}

// ClassifyText matches text directly, bypassing extraction.
func (c *Classifier) ClassifyText(source, text string) Result {
	start := time.Now()
	res := c.Match(source, text)
	return c.finish(res, start)
}

// Classify extracts and matches one document read from r.
func (c *Classifier) Classify(source string, r io.Reader) Result {
	start := time.Now()
	return c.finish(c.classify(source, r), start)
}

func (c *Classifier) classify(source string, r io.Reader) Result {
	text, err := c.Extract(source, r)
	if err != nil {
		return failed(source, fmt.Errorf("extract: %w", err))
	}
	return c.Match(source, text)
}

// ClassifyFile opens path and classifies it.
func (c *Classifier) ClassifyFile(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return failed(path, err)
	}
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return c.finish(failed(path, err), start)
	}
	defer f.Close()
	return c.finish(c.classify(path, f), start)
}

func (c *Classifier) finish(res Result, start time.Time) Result {
	res.Elapsed = time.Since(start)
	if c.stats != nil {
		c.stats.Record(res.Status, res.Elapsed)
	}
	log := c.log.With("source", res.Source, "status", res.Status, "elapsed_ms", res.Elapsed.Milliseconds())
	switch res.Status {
	case StatusFailed:
		log.Warn("classification failed", "error", res.Error)
	case StatusAmbiguous:
		log.Info("ambiguous classification", "matches", len(res.Matches))
	default:
		log.Debug("document classified", "matches", len(res.Matches))
	}
	return res
}
