package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsort/internal/config"
	"github.com/dgallion1/docsort/internal/layout"
	"github.com/dgallion1/docsort/internal/mover"
	"github.com/dgallion1/docsort/internal/parser"
	"github.com/dgallion1/docsort/internal/pipeline"
	"github.com/dgallion1/docsort/internal/report"
	"github.com/dgallion1/docsort/internal/rules"
	"github.com/dgallion1/docsort/internal/scan"
)

type classifyOptions struct {
	input         string
	output        string
	printConfig   bool
	move          bool
	copy          bool
	dryRun        bool
	workers       int
	extensions    []string
	showUnmatched bool
	hidden        bool
	summary       bool
}

func (c *classifyOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&c.input, "input", "i", "", "directory with the documents to classify")
	f.StringVarP(&c.output, "output", "o", "", "root of the destination tree, required to file documents")
	f.BoolVar(&c.printConfig, "print-config", false, "print the layout file and exit")
	f.BoolVar(&c.move, "move", false, "move uniquely classified documents into the output tree")
	f.BoolVar(&c.copy, "copy", false, "copy uniquely classified documents into the output tree")
	f.BoolVar(&c.dryRun, "dry-run", false, "show where documents would be filed without touching them")
	f.IntVar(&c.workers, "workers", 0, "documents to extract in parallel (default $DDC_WORKERS or 4)")
	f.StringSliceVar(&c.extensions, "ext", nil, "file extensions to classify (default $DDC_EXTENSIONS or pdf)")
	f.BoolVar(&c.showUnmatched, "show-unmatched", false, "also list documents without a destination")
	f.BoolVar(&c.hidden, "hidden", false, "include hidden files and directories")
	f.BoolVar(&c.summary, "summary", false, "print per-status counts to stderr")
	cmd.MarkFlagsMutuallyExclusive("move", "copy")
}

func (c *classifyOptions) filing() bool {
	return c.move || c.copy || c.dryRun
}

func (c *classifyOptions) mode() mover.Mode {
	if c.copy {
		return mover.Copy
	}
	return mover.Move
}

// apply overrides the environment config with explicit flags.
func (c *classifyOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("workers") {
		cfg.WorkerCount = c.workers
	}
	if cmd.Flags().Changed("ext") {
		cfg.Extensions = c.extensions
	}
	cfg.Normalize()
}

func runClassify(cmd *cobra.Command, g *globals, c *classifyOptions) error {
	if c.printConfig {
		raw, err := layout.Raw(g.cfg.LayoutPath)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	if c.input == "" {
		return errors.New("an input directory is required (--input)")
	}
	if c.filing() && c.output == "" {
		return errors.New("an output directory is required to file documents (--output)")
	}
	c.apply(cmd, &g.cfg)

	rs, err := g.loadRules()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	scanOpts := scan.Options{Extensions: g.cfg.Extensions, SkipHidden: !c.hidden}
	if c.filing() {
		scanOpts.Exclude = c.output
	}
	files, err := scan.Files(ctx, c.input, scanOpts)
	if err != nil {
		return err
	}
	g.log.Info("documents found", "input", c.input, "count", len(files), "extensions", g.cfg.Extensions)

	classifier := pipeline.NewClassifier(
		rules.NewMatcher(rs),
		parser.Options{FallbackPdftotext: g.cfg.PDFFallbackPdftotext},
		nil,
		g.log,
	)
	results, runErr := pipeline.RunBatch(ctx, classifier, files, g.cfg.WorkerCount)

	opts := report.Options{ShowUnmatched: c.showUnmatched, Color: colorFor(cmd.OutOrStdout())}
	var fileErr error
	if c.filing() && runErr == nil {
		opts.Filed, fileErr = fileResults(g, c, results)
	}

	out := cmd.OutOrStdout()
	if g.outputFormat() == report.FormatJSON {
		err = report.JSON(out, results, opts)
	} else {
		err = report.Text(out, results, opts)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if c.summary {
		if err := report.Summary(cmd.ErrOrStderr(), results); err != nil {
			return err
		}
	}
	return errors.Join(runErr, fileErr)
}

// fileResults files every document with exactly one destination. Ambiguous
// and unclassified documents stay where they are.
func fileResults(g *globals, c *classifyOptions, results []pipeline.Result) (map[string]mover.Action, error) {
	m := mover.New(c.output, c.mode(), c.dryRun, g.log)
	filed := make(map[string]mover.Action)
	var failures int
	for _, res := range results {
		rule, ok := res.Destination()
		if !ok {
			if res.Status == pipeline.StatusAmbiguous {
				g.log.Info("not filing ambiguous document", "source", res.Source, "candidates", len(res.Matches))
			}
			continue
		}
		act, err := m.File(rule, res.Source)
		if err != nil {
			failures++
			g.log.Error("filing failed", "source", res.Source, "destination", rule.Destination, "error", err)
			continue
		}
		filed[res.Source] = act
	}
	if failures > 0 {
		return filed, fmt.Errorf("%d documents could not be filed", failures)
	}
	return filed, nil
}
