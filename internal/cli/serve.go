package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsort/internal/api"
	"github.com/dgallion1/docsort/internal/logging"
	"github.com/dgallion1/docsort/internal/parser"
	"github.com/dgallion1/docsort/internal/pipeline"
	"github.com/dgallion1/docsort/internal/rules"
)

func newServeCmd(g *globals) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classifier as an HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				g.cfg.Port = port
			}
			if err := g.cfg.ValidateServer(); err != nil {
				return err
			}
			// The service logs JSON to stdout, at info level unless -v asks for more.
			log := logging.New(cmd.OutOrStdout(), max(g.verbosity, 1), true)

			rs, err := g.loadRules()
			if err != nil {
				return err
			}
			classifier := pipeline.NewClassifier(
				rules.NewMatcher(rs),
				parser.Options{FallbackPdftotext: g.cfg.PDFFallbackPdftotext},
				pipeline.NewStats(time.Hour),
				log,
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			orch := pipeline.NewOrchestrator(g.cfg, classifier, log)
			orch.Start(ctx)
			defer orch.Stop()

			httpServer := &http.Server{
				Addr:         ":" + g.cfg.Port,
				Handler:      api.NewServer(orch, log, g.cfg),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			shutdownDone := make(chan struct{})
			go func() {
				defer close(shutdownDone)
				<-ctx.Done()
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting ddc", "port", g.cfg.Port, "rules", len(rs), "workers", g.cfg.WorkerCount)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-shutdownDone
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8090)")
	return cmd
}
