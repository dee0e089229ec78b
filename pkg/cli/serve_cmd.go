package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			return serve(ctx, rt)
		},
	}
	cmd.Flags().String("listen", "", "Override LISTEN_ADDR")
	return cmd
}

// serve runs the HTTP server and the optional import scheduler until ctx is
// cancelled, then shuts both down.
func serve(ctx context.Context, rt *runtime) error {
	a, err := rt.app(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              rt.cfg.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.Scheduler != nil {
		if err := a.Scheduler.Start(gctx); err != nil {
			return fmt.Errorf("start import scheduler: %w", err)
		}
		defer a.Scheduler.Stop()
	}

	g.Go(func() error {
		rt.logger.Info("catalog API listening", "addr", rt.cfg.ListenAddr, "db", rt.cfg.MetaDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
