// backlog reports on TestRail automation backlogs: a terminal report, an
// HTTP dashboard, an MCP server for agent access, and a PNG snapshot of the
// dashboard page.
//
// Usage:
//
//	backlog report   [--config=<path>] [--bu=<name>] [--run=<name>] [--markdown]
//	backlog serve    [--config=<path>] [--listen=<addr>]
//	backlog mcp      [--config=<path>]
//	backlog snapshot [--config=<path>] [--bu=<name>] -o <file.png>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backlog/internal/config"
	"backlog/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "TestRail automation backlog dashboard",
	Long:  "Backlog summarizes a TestRail plan's automation backlog:\neffective statuses, progress, device and country breakdowns,\nand not-applicable reasons.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, logFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.Version = version
}

// loadConfig reads the config file when --config is set, otherwise the
// environment-only defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Default()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
