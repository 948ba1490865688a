package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	ironmcp "github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/stats"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	owner := flag.String("owner", "", "owner user ID (uuid) the MCP session is scoped to")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ownerID, err := uuid.Parse(*owner)
	if err != nil {
		log.Error("-owner must be a valid uuid", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ds := &ironmcp.Local{DB: db, Stats: stats.NewAggregator(db, db, log)}
	mcpServer := ironmcp.New(ds, ownerID, Version, log)

	log.Info("IronLog MCP server starting", "version", Version, "owner", ownerID)
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
