package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"desideri-go/internal/app"
	"desideri-go/internal/handlers"
)

var gracefulTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the order API and the live SSE stream. The schema is migrated
and the catalog seeded on first start. Shuts down gracefully on SIGINT or
SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().DurationVar(&gracefulTimeout, "graceful-timeout", 10*time.Second, "graceful shutdown timeout")
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("app init failed", "err", err)
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         a.Config().Addr,
		Handler:      handlers.NewRouter(a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open; handlers carry their own timeout
		IdleTimeout:  90 * time.Second,
	}
	srv.RegisterOnShutdown(a.SSE().Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "base_url", a.Config().BaseURL, "db", a.Store().Dialect)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
