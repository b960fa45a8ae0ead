//go:build !solution

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/slon/rwsem/rwcoord"
	"gitlab.com/slon/rwsem/rwserver"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr       string
		maxReaders int
		inflight   int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose a coordinator over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(root.debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			coord := rwcoord.New(
				rwcoord.WithMaxReaders(maxReaders),
				rwcoord.WithLogger(logger),
				rwcoord.WithMetrics(rwcoord.NewMetrics(reg)),
			)
			srv := rwserver.NewServer(addr, coord, inflight, reg, logger)
			return serve(cmd.Context(), srv, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxReaders, "max-readers", rwcoord.DefaultMaxReaders, "read gate capacity")
	cmd.Flags().IntVar(&inflight, "inflight", rwserver.DefaultInflight, "coordinator calls served at once")
	return cmd
}

func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
