// Package mcp exposes the snapshot engine to MCP clients.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/vitalsnap/internal/sleep"
	"github.com/claude/vitalsnap/internal/snapshot"
	"github.com/claude/vitalsnap/internal/storage"
)

// New creates an MCP server with all tools and resources registered.
func New(store storage.Store, agg *snapshot.Aggregator, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("VitalSnap", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("VitalSnap health snapshot server. Fetch the unified health snapshot, sleep summaries with scores, breathing disturbance risk, and workouts."),
	)

	h := &handlers{store: store, agg: agg, sleep: sleep.New(store), log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSnapshot, Handler: h.getSnapshot},
		server.ServerTool{Tool: toolGetSleepSummary, Handler: h.getSleepSummary},
		server.ServerTool{Tool: toolGetApneaRisk, Handler: h.getApneaRisk},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resLatestSnapshot, Handler: h.latestSnapshot},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	store storage.Store
	agg   *snapshot.Aggregator
	sleep *sleep.Builder
	log   *slog.Logger
}

// --- Resource definitions ---

var resLatestSnapshot = mcp.NewResource(
	"vitalsnap://latest_snapshot",
	"Latest Snapshot",
	mcp.WithResourceDescription("The unified health snapshot: activity totals, sleep summary with score, heart and oxygen readings, breathing disturbance risk, and recent workouts"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) latestSnapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.agg.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := marshalJSON(snap)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     raw,
		},
	}, nil
}
