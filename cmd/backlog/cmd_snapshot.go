package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"backlog/internal/dashboard"
	"backlog/internal/logging"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

var (
	snapshotBU      string
	snapshotRun     string
	snapshotOut     string
	snapshotQuality int
	snapshotTimeout time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the dashboard page as a PNG",
	Long:  "Serves the dashboard on a loopback port, renders it in headless Chrome,\nand writes a full-page screenshot. Useful for sharing a point-in-time\nview in chat or a status report.",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotBU, "bu", "", "Business unit name (default: first configured)")
	snapshotCmd.Flags().StringVar(&snapshotRun, "run", "", "Narrow to a single run by name")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "backlog.png", "Output PNG path")
	snapshotCmd.Flags().IntVar(&snapshotQuality, "quality", 90, "Screenshot quality (1-100)")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 60*time.Second, "Overall capture timeout")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := selectPlan(cfg, snapshotBU); err != nil {
		return err
	}

	client, err := testrail.New(cfg.Secrets.BaseURL, cfg.Secrets.User, cfg.Secrets.APIKey)
	if err != nil {
		return err
	}
	cache := snapshot.NewCache(snapshot.NewFetcher(client), cfg.CacheTTL.Std())
	srv := dashboard.New(cfg, cache)

	ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
	defer cancel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{Handler: srv.Handler()}
	go httpServer.Serve(listener)
	defer httpServer.Close()

	params := url.Values{}
	if snapshotBU != "" {
		params.Set("bu", snapshotBU)
	}
	if snapshotRun != "" {
		params.Set("run", snapshotRun)
	}
	pageURL := fmt.Sprintf("http://%s/", listener.Addr())
	if len(params) > 0 {
		pageURL += "?" + params.Encode()
	}

	logger := logging.New("snapshot")
	logger.Info("rendering dashboard", "url", pageURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var png []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1440, 900),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&png, snapshotQuality),
	); err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	if err := os.WriteFile(snapshotOut, png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	logger.Info("snapshot written", "path", snapshotOut, "bytes", len(png))
	fmt.Printf("Snapshot: %s\n", snapshotOut)
	return nil
}
