package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backlog/internal/render"
	"backlog/internal/report"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

var (
	reportBU       string
	reportRun      string
	reportMarkdown bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the backlog dashboard to the terminal",
	Long:  "Fetches one business unit's plan from TestRail and prints the full\ndashboard: status counts, progress, breakdowns, and detail tables.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportBU, "bu", "", "Business unit name (default: first configured)")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "Narrow to a single run by name")
	reportCmd.Flags().BoolVar(&reportMarkdown, "markdown", false, "Emit Markdown tables instead of terminal tables")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	selected, err := selectPlan(cfg, reportBU)
	if err != nil {
		return err
	}

	client, err := testrail.New(cfg.Secrets.BaseURL, cfg.Secrets.User, cfg.Secrets.APIKey)
	if err != nil {
		return err
	}

	snap, err := snapshot.NewFetcher(client).Fetch(cmd.Context(), selected.PlanID)
	if err != nil {
		return fmt.Errorf("load plan %q: %w", selected.Name, err)
	}

	summary := report.Summarize(snap, cfg.Secrets.BaseURL, cfg.Fields, reportRun)

	mode := render.ASCII
	if reportMarkdown {
		mode = render.Markdown
	}
	render.New(mode).Summary(os.Stdout, summary)
	return nil
}
