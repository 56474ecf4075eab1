package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookloader/bookloader/internal/handlers"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lookup API server",
		Long: `Starts a JSON API on the specified port.

GET /api/lookup?isbn= looks a book up and keeps the record in memory,
/api/records lists the kept records and /api/classify maps raw subject
strings onto the configured categories.`,
		Example: `  # Start server on default port 8888
  bookloader serve

  # Start server on custom port
  bookloader serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := root.load(cmd.Context())
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			handlers.New(svc).Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookloader API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
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

	return cmd
}
