// Package mcp exposes read-only training data to LLM clients over the
// Model Context Protocol. All tools are scoped to one owner; mutations
// stay on the HTTP API.
package mcp

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools registered, scoped to ownerID.
func New(ds DataSource, ownerID uuid.UUID, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("IronLog strength-training data server. Query workout sessions, personal records, and period or all-time training statistics. All data is scoped to the configured user."),
	)

	h := &handlers{ds: ds, ownerID: ownerID, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetPeriodStats, Handler: h.getPeriodStats},
		server.ServerTool{Tool: toolGetAllTimeStats, Handler: h.getAllTimeStats},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ds      DataSource
	ownerID uuid.UUID
	log     *slog.Logger
}
