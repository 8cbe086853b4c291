// Package mcp exposes the admission rules over the Model Context
// Protocol so an operator's assistant can inspect and adjust them.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joingate/joingate/internal/attempts"
	"github.com/joingate/joingate/internal/engine"
	"github.com/joingate/joingate/internal/rules"
)

// Config holds MCP server configuration.
type Config struct {
	DataDir  string
	Defaults rules.Defaults
}

// Server wraps the MCP SDK server over the rule store and a dry-run
// admission engine.
type Server struct {
	mcpServer *mcpsdk.Server
	store     *rules.Store
	engine    *engine.Engine
}

// New creates an MCP server backed by the rule store in dataDir.
func New(cfg Config) (*Server, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	store := rules.NewStore(rules.NewFilePersister(cfg.DataDir), cfg.Defaults)

	s := &Server{
		store:  store,
		engine: engine.New(store, attempts.NewTracker()),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "joingate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all joingate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "joingate_check",
		Description: "Dry-run a join request against a group's admission rules without touching the request or the attempt counter.",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "joingate_rules",
		Description: "Show the stored admission rules for a group.",
	}, s.handleRules)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "joingate_block",
		Description: "Add a user to a group's blacklist.",
	}, s.handleBlock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "joingate_unblock",
		Description: "Remove a user from a group's blacklist.",
	}, s.handleUnblock)
}
