package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"aiwriter/internal/server"
)

func serveCmd(g *globals) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the writer HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				secret, err := app.csrfSecret()
				if err != nil {
					return err
				}
				srv, err := server.NewServer(server.Config{
					Services:     app.Services,
					Metrics:      app.Metrics,
					Secret:       secret,
					Logger:       app.logger,
					WriteTimeout: app.cfg.WriteTimeout,
				})
				if err != nil {
					return err
				}
				addr := app.cfg.Listen
				if listen != "" {
					addr = listen
				}

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start(addr) }()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				app.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return <-errCh
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
