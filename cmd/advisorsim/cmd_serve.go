package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/api"
	"github.com/danielpatrickdp/advisor-sim/internal/config"
)

// serveCmd exposes reply generation over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reply API on $PORT",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// a nil *knowledge.Base must not become a non-nil interface
	var kb api.Knowledge
	if a.knowledge != nil {
		kb = a.knowledge
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     api.NewRouter(api.NewHandler(a.orch, a.personas, kb, logger), timeout),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[API] listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("[API] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
