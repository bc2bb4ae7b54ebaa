package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"windtrader/internal/invoke"
	"windtrader/internal/logging"
	mcpserver "windtrader/internal/mcp"
)

var serveFlags struct {
	timeout time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the validator as tools
(check_document, echo_document, compatibility_report, list_versions), so
editor agents can validate documents without shelling out.

The server monitors for parent process death. When the client disconnects
or restarts its extension host, the server self-terminates to prevent
zombie processes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveFlags.timeout, "timeout", invoke.DefaultTimeout, "per-invocation subprocess timeout")
}

func runServe(cmd *cobra.Command, _ []string) error {
	runner := newRunner(serveFlags.timeout)
	srv := mcpserver.NewServer(runner, newOrchestrator(serveFlags.timeout), loadCatalog)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting windtrader MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
