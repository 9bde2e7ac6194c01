package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/web"
	"github.com/mesh-intelligence/todos/pkg/types"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	var pruneEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo-list web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rt.serve(ctx, pruneEvery)
		},
	}
	cmd.Flags().String("addr", defaultAddr, "address to listen on")
	cmd.Flags().DurationVar(&pruneEvery, "prune-every", time.Hour, "interval between expired-session sweeps")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func (rt *runtime) serve(ctx context.Context, pruneEvery time.Duration) error {
	store, err := rt.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			rt.logger.Error("closing store", "err", err)
		}
	}()

	registry := prometheus.NewRegistry()
	handler, err := web.NewServer(web.Options{
		Store:        store,
		Logger:       rt.logger,
		CookieName:   rt.settings.CookieName,
		CookieSecure: rt.settings.CookieSecure,
		Registry:     registry,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              rt.settings.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := new(sync.WaitGroup)
	if rt.settings.SessionTTL > 0 && pruneEvery > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pruneLoop(ctx, store, rt.settings.SessionTTL, pruneEvery, rt.logger)
		}()
	}

	listenErr := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", "addr", rt.settings.Addr, "backend", rt.settings.Backend, "data_dir", rt.settings.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		rt.logger.Info("shutting down")
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	err = httpServer.Shutdown(shutdownCtx)
	wg.Wait()
	return err
}

// pruneLoop deletes sessions idle longer than ttl every interval until ctx
// is cancelled.
func pruneLoop(ctx context.Context, store types.SessionStore, ttl, every time.Duration, logger *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			n, err := store.Prune(ctx, time.Now().Add(-ttl))
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("pruning sessions", "err", err)
				}
				continue
			}
			if n > 0 {
				logger.Info("pruned sessions", "count", n, "ttl", ttl)
			}
		case <-ctx.Done():
			return
		}
	}
}
