package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/domino"
	"github.com/aretw0/domino/internal/app"
	"github.com/aretw0/domino/internal/presentation/tui"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves the stored dominoes as a JSON API, with commit streams and Prometheus metrics.`,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			if cmd.Flags().Changed("port") {
				a.Config.HTTP.Port = port
			}
			handler, err := a.Handler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Event streams end with ctx instead of holding up the shutdown.
			srv := &http.Server{
				Addr:              ":" + a.Config.HTTP.Port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			return serve(ctx, cmd, a, srv)
		}),
	}
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to listen on; overrides the config")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, cmd *cobra.Command, a *app.App, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		tui.PrintBanner(cmd.ErrOrStderr(), domino.Version)
		a.Logger.Info("server starting", "addr", srv.Addr, "backend", a.Config.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.Logger.Info("shutting down")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("killing server: %w", err)
			}
		}
		a.Logger.Info("server stopped")
		return nil
	}
}
