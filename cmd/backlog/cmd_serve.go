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

	"backlog/internal/dashboard"
	"backlog/internal/logging"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backlog dashboard over HTTP",
	Long:  "Starts the dashboard server: a server-rendered HTML page, a JSON API,\nand an SSE stream announcing cache refreshes. Snapshots are memoized\nper plan for the configured cache window.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, falls back to :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	client, err := testrail.New(cfg.Secrets.BaseURL, cfg.Secrets.User, cfg.Secrets.APIKey)
	if err != nil {
		return err
	}
	cache := snapshot.NewCache(snapshot.NewFetcher(client), cfg.CacheTTL.Std())
	srv := dashboard.New(cfg, cache)

	logger := logging.New("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dashboard listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
