package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// StartupTool handles the nexus_startup MCP tool.
// It is the first call of every session.
type StartupTool struct {
	svc *service.Service
}

// NewStartupTool creates a StartupTool.
func NewStartupTool(svc *service.Service) *StartupTool {
	return &StartupTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *StartupTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_startup",
		mcp.WithDescription(
			"Bootstrap a Nexus session. Creates smart-default memory files on first run, "+
				"classifies the workspace state, and returns memory content, stats, and "+
				"instructions for what to do next. Call this FIRST in every new session "+
				"and follow the returned instructions.",
		),
		mcp.WithBoolean("include_metadata",
			mcp.Description("Include the project, skill, and integration lists (default: true)"),
		),
		mcp.WithBoolean("check_updates",
			mcp.Description("Ask upstream whether system files changed (default: true)"),
		),
	)
}

// Handle processes the nexus_startup tool call.
func (t *StartupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := service.DefaultStartupOptions()
	opts.IncludeMetadata = req.GetBool("include_metadata", opts.IncludeMetadata)
	opts.CheckUpdates = req.GetBool("check_updates", opts.CheckUpdates)

	return jsonResult(t.svc.Startup(ctx, opts), "")
}
