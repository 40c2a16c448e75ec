// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/davetashner/chatbridge/internal/config"
	"github.com/davetashner/chatbridge/internal/mcpserver"
)

// MCP serve flags.
var mcpFlags hostFlags

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running chatbridge as an MCP server, exposing the ask tool to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout exposing one tool:
  - ask: send text through the fixed prompt template and return the
         endpoint's JSON response

Calls may carry their own api_key; otherwise the variable named by
--api-key-env (or api_key_env in config) is read at call time.
--timeout (or timeout in config) bounds each call.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(config.Options{
			APIKeyEnv: mcpFlags.APIKeyEnv,
			Timeout:   mcpFlags.Timeout,
			Endpoint:  mcpFlags.Endpoint,
		})
		if err != nil {
			return err
		}
		return mcpserver.Run(cmd.Context(), mcpServerOptions(opts), &mcp.StdioTransport{})
	},
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpFlags.APIKeyEnv, "api-key-env", "", "environment variable holding the credential (default OPENAI_API_KEY)")
	mcpServeCmd.Flags().StringVar(&mcpFlags.Endpoint, "endpoint", "", "override the chat-completion URL")
	mcpServeCmd.Flags().DurationVar(&mcpFlags.Timeout, "timeout", 0, "abandon each call after this long (0 = no limit)")
	mcpCmd.AddCommand(mcpServeCmd)
}

// mcpServerOptions maps resolved host options onto the MCP server.
func mcpServerOptions(opts config.Options) mcpserver.Options {
	return mcpserver.Options{
		Version:   Version,
		Invoker:   newBridge(opts),
		APIKeyEnv: opts.APIKeyEnv,
		Timeout:   opts.Timeout,
	}
}
