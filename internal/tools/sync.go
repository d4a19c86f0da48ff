package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/updater"
	"github.com/mark3labs/mcp-go/mcp"
)

// SyncTool handles the nexus_sync MCP tool.
// Only system paths are touched; user memory, projects, and skills are
// never synced.
type SyncTool struct {
	svc *service.Service
}

// NewSyncTool creates a SyncTool.
func NewSyncTool(svc *service.Service) *SyncTool {
	return &SyncTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *SyncTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_sync",
		mcp.WithDescription(
			"Replace system files (00-system/, CLAUDE.md, README.md) with the upstream copy. "+
				"Changed files are backed up first. Run with dry_run=true and show the user "+
				"files_to_update before syncing for real.",
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Only report what would change (default: false)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Sync even with uncommitted changes (default: false)"),
		),
	)
}

// Handle processes the nexus_sync tool call.
func (t *SyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.svc.Sync(ctx, updater.SyncOptions{
		DryRun: req.GetBool("dry_run", false),
		Force:  req.GetBool("force", false),
	})
	return jsonResult(res, res.Error)
}
