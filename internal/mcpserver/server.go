// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

// Package mcpserver exposes the bridge to MCP clients as an "ask" tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/chatbridge/internal/config"
)

// Invoker performs one bridge exchange. *bridge.Bridge satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, userInput, apiKey string) (json.RawMessage, error)
}

// Options configures the server.
type Options struct {
	// Version is reported to clients.
	Version string

	// Invoker handles every ask call.
	Invoker Invoker

	// APIKeyEnv names the environment variable read when a call does not
	// carry its own api_key. Defaults to config.DefaultAPIKeyEnv.
	APIKeyEnv string

	// Timeout bounds each ask call. Zero means no limit beyond the
	// client's own cancellation.
	Timeout time.Duration
}

// New creates a new MCP server with chatbridge's tools registered.
func New(opts Options) *mcp.Server {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = config.DefaultAPIKeyEnv
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatbridge",
		Title:   "Chatbridge chat-completion relay",
		Version: opts.Version,
	}, nil)

	registerTools(server, &tools{invoker: opts.Invoker, apiKeyEnv: opts.APIKeyEnv, timeout: opts.Timeout})
	return server
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, opts Options, transport mcp.Transport) error {
	return New(opts).Run(ctx, transport)
}
