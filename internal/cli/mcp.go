package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joingate/joingate/internal/config"
	joinmcp "github.com/joingate/joingate/internal/mcp"
)

var mcpConfigPath string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVarP(&mcpConfigPath, "config", "c", "", "Path to config YAML")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for assistant integration",
	Long:  "Runs joingate as an MCP (Model Context Protocol) server over stdio.\nExposes the rule store as tools: check, rules, block, unblock.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(mcpConfigPath)
	if err != nil {
		return err
	}

	srv, err := joinmcp.New(joinmcp.Config{
		DataDir:  cfg.DataDir,
		Defaults: cfg.RuleDefaults(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	return srv.Run(ctx)
}
