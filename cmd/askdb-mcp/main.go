package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/askdb/askdb/internal/app"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/mcpserver"
	"github.com/askdb/askdb/internal/observability"
)

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv("askdb-mcp")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// stdout carries the MCP protocol.
	logger := observability.NewLogger(cfg, os.Stderr)
	pipeline, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	s := mcpserver.NewServer(pipeline.Service, version, logger)
	logger.Info("starting mcp server", slog.String("tool", mcpserver.ToolName))
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
