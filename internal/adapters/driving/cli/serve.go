package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/adapters/driven/scorestore/sqlite"
	"github.com/credostack/underwrite/internal/core/services"
	"github.com/credostack/underwrite/internal/logger"
	"github.com/credostack/underwrite/internal/server"
	"github.com/credostack/underwrite/internal/watcher"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credit scoring HTTP API",
	Long: `Starts the rule-based scoring service. While running, the documents
directory is watched for changes so operators can tell when the index
has gone stale.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to the configured one)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Scoring.ListenAddr
	}

	store, err := sqlite.NewStore(cfg.Scoring.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if w, err := watcher.New(cfg.Index.DocumentsDir); err != nil {
		logger.Warn("Document watcher unavailable: %v", err)
	} else {
		defer w.Close()
		go w.Run(ctx)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: server.SetupRouter(services.NewScoringService(store)),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Scoring API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
