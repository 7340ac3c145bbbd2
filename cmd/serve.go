package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartdanawa/pricescan/internal/handlers"
	"github.com/cartdanawa/pricescan/internal/pricetag"
	"github.com/cartdanawa/pricescan/internal/recognition"
	"github.com/cartdanawa/pricescan/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port     string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the recognition service and scan API",
		Long: `Starts the pricescan web server on the specified port.

The server exposes the recognition endpoint (/api/parse), scan sessions
that accept camera frames or tag text, the shared cart and, when
DATABASE_URL is set, the scan history.`,
		Example: `  # Start server on default port 8888
  pricescan serve

  # Use OpenAI for recognition on port 3000
  pricescan serve --provider openai --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handlers.Options{}

			svc, err := pricetag.NewService(provider)
			if err != nil {
				if !recognition.IsConfigurationError(err) {
					return err
				}
				// keep serving; sessions fall back to local parsing
				slog.Error("Recognition service unavailable", "err", err)
				opts.ServiceErr = err
			}
			opts.Service = svc

			if opts.Recognizer, err = remoteRecognizer(os.Getenv("RECOGNITION_URL")); err != nil {
				return err
			}
			if opts.Spacing, err = spacingFromEnv(); err != nil {
				return err
			}

			if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
				db, err := store.Open(cmd.Context(), dsn)
				if err != nil {
					return err
				}
				defer db.Close()

				repo := store.NewScanRepo(db)
				if err := repo.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				opts.History = repo
				slog.Info("Scan history enabled")
			}

			handler := handlers.New(opts)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.NewRouter(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Pricescan available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&provider, "provider", "", "Recognition provider (gemini, openai or ollama; defaults to PRICESCAN_PROVIDER)")

	return cmd
}
