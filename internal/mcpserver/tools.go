package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/chatbridge/internal/redact"
	"github.com/davetashner/chatbridge/internal/reply"
)

// AskInput is the input schema for the ask MCP tool.
type AskInput struct {
	Input    string `json:"input" jsonschema:"Text to send to the model; passed through verbatim"`
	APIKey   string `json:"api_key,omitempty" jsonschema:"Bearer credential; defaults to the server's configured environment variable"`
	TextOnly bool   `json:"text_only,omitempty" jsonschema:"Return only choices[0].message.content instead of the raw JSON document; an API error document is reported as a tool error"`
}

// errNoAPIKey is returned when neither the call nor the environment supplies
// a credential.
var errNoAPIKey = errors.New("no api_key provided")

type tools struct {
	invoker   Invoker
	apiKeyEnv string
	timeout   time.Duration
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

// registerTools adds all chatbridge tools to the MCP server.
func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Send text to the chat-completion endpoint wrapped in a fixed concise-assistant prompt. Returns the endpoint's JSON response unmodified, including API error payloads.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, t.handleAsk)
}

func (t *tools) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, any, error) {
	// Keys from the environment live as long as the process and are
	// registered; a per-call key is scrubbed from this call's errors only.
	key := input.APIKey
	if key == "" {
		key = os.Getenv(t.apiKeyEnv)
		if key == "" {
			return nil, nil, fmt.Errorf("%w and %s is not set", errNoAPIKey, t.apiKeyEnv)
		}
		redact.Register(key)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	doc, err := t.invoker.Invoke(ctx, input.Input, key)
	if err != nil {
		return nil, nil, errors.New(redact.StringWith(err.Error(), input.APIKey))
	}

	apiErr, isAPIErr := reply.ParseAPIError(doc)
	if isAPIErr {
		slog.Debug("endpoint returned an error document", "error", redact.StringWith(apiErr.Error(), input.APIKey))
	}

	if !input.TextOnly {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(doc)},
			},
		}, nil, nil
	}

	if isAPIErr {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: redact.StringWith(apiErr.Error(), input.APIKey)},
			},
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: reply.TextOrDefault(doc)},
		},
	}, nil, nil
}
