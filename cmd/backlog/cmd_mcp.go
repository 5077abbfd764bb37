package main

import (
	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"backlog/internal/logging"
	"backlog/internal/mcpsrv"
	"backlog/internal/snapshot"
	"backlog/internal/testrail"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long:  "Starts an MCP server over stdin/stdout exposing the dashboard as tools:\nlist_business_units, get_dashboard_summary, list_tests, refresh.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := testrail.New(cfg.Secrets.BaseURL, cfg.Secrets.User, cfg.Secrets.APIKey)
	if err != nil {
		return err
	}
	cache := snapshot.NewCache(snapshot.NewFetcher(client), cfg.CacheTTL.Std())
	srv := mcpsrv.NewServer(cfg, cache)

	logging.New("mcp").Info("starting backlog MCP server over stdio")
	return srv.MCPServer.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
