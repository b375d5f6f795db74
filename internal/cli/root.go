// Package cli wires the ddc command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsort/internal/config"
	"github.com/dgallion1/docsort/internal/layout"
	"github.com/dgallion1/docsort/internal/logging"
	"github.com/dgallion1/docsort/internal/report"
	"github.com/dgallion1/docsort/internal/rules"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// globals are the flags shared by every command.
type globals struct {
	verbosity  int
	logJSON    bool
	configPath string
	format     string

	cfg config.Config
	log *slog.Logger
}

// NewRootCmd builds the command tree. The root command classifies an input
// directory.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	c := &classifyOptions{}

	rootCmd := &cobra.Command{
		Use:   "ddc",
		Short: "Sort documents into directories by keyword rules",
		Long: `ddc classifies documents by the words found on their first page.

The layout file describes a tree of destination directories, each with
keywords. A directory inherits the keywords of its parents, and a document
matches a directory when every one of its keywords appears as a whole word.
A document matching more than one directory is reported as ambiguous.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, g, c)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	pf.BoolVar(&g.logJSON, "log-json", false, "write logs as JSON")
	pf.StringVar(&g.configPath, "config", "", "layout file (default $DDC_CONFIG or $XDG_CONFIG_HOME/ddc/config.yml)")
	pf.StringVar(&g.format, "format", "text", "output format: text or json")

	c.bindFlags(rootCmd)

	rootCmd.AddCommand(newRulesCmd(g))
	rootCmd.AddCommand(newServeCmd(g))
	return rootCmd
}

// setup merges environment config with flags and builds the logger.
func (g *globals) setup(cmd *cobra.Command) error {
	g.log = logging.New(cmd.ErrOrStderr(), g.verbosity, g.logJSON)

	g.cfg = config.Load()
	if g.configPath != "" {
		g.cfg.LayoutPath = g.configPath
	}
	if err := g.cfg.Validate(); err != nil {
		return err
	}
	if _, err := report.ParseFormat(g.format); err != nil {
		return err
	}
	g.log.Debug("command started", "command", cmd.Name(), "layout", g.cfg.LayoutPath)
	return nil
}

func (g *globals) outputFormat() report.Format {
	f, _ := report.ParseFormat(g.format)
	return f
}

// loadRules reads and compiles the layout file.
func (g *globals) loadRules() ([]rules.Rule, error) {
	rs, err := layout.Load(g.cfg.LayoutPath)
	if err != nil {
		return nil, err
	}
	g.log.Info("layout loaded", "path", g.cfg.LayoutPath, "rules", len(rs))
	if len(rs) == 0 {
		g.log.Warn("layout defines no destinations", "path", g.cfg.LayoutPath)
	}
	return rs, nil
}

// colorFor enables styling only when w is a terminal.
func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && report.ColorEnabled(f)
}

func newRulesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the compiled classification rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := g.loadRules()
			if err != nil {
				return err
			}
			if g.outputFormat() == report.FormatJSON {
				return report.RulesJSON(cmd.OutOrStdout(), rs)
			}
			if err := report.Rules(cmd.OutOrStdout(), rs); err != nil {
				return fmt.Errorf("write rules: %w", err)
			}
			return nil
		},
	}
}
