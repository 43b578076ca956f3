package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/askdb/askdb/internal/ask"
	"github.com/askdb/askdb/internal/query"
)

const ToolName = "ask_database"

type Asker interface {
	Ask(ctx context.Context, question ask.Question) (query.Result, error)
}

// NewServer registers the ask_database tool on a fresh MCP server.
func NewServer(asker Asker, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"askdb",
		version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Answer a natural-language question by generating SQL against the configured database and running it. Returns the SQL with its columns and rows, or the SQL with an execution error."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer, e.g. \"How many users signed up last week?\""),
		),
		mcp.WithString("schema",
			mcp.Description("Optional schema text to use instead of the live database schema"),
		),
	)
	s.AddTool(tool, AskHandler(asker, logger))
	return s
}

func AskHandler(asker Asker, logger *slog.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		schemaOverride := request.GetString("schema", "")

		result, err := asker.Ask(ctx, ask.Question{Text: question, SchemaOverride: schemaOverride})
		if err != nil {
			kind, ok := ask.KindOf(err)
			logger.WarnContext(ctx, "tool_call_failed", slog.String("tool", ToolName), slog.String("kind", string(kind)), slog.String("error", err.Error()))
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err)), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode query result: %w", err)
		}
		logger.InfoContext(ctx, "tool_call_completed", slog.String("tool", ToolName), slog.Bool("query_error", result.Failed()))
		return mcp.NewToolResultText(string(payload)), nil
	}
}
