package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// CheckUpdatesTool handles the nexus_check_updates MCP tool.
type CheckUpdatesTool struct {
	svc *service.Service
}

// NewCheckUpdatesTool creates a CheckUpdatesTool.
func NewCheckUpdatesTool(svc *service.Service) *CheckUpdatesTool {
	return &CheckUpdatesTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckUpdatesTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_check_updates",
		mcp.WithDescription(
			"Fetch the upstream template and report whether system files changed. "+
				"Never modifies the workspace.",
		),
	)
}

// Handle processes the nexus_check_updates tool call.
func (t *CheckUpdatesTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.svc.CheckUpdates(ctx), "")
}
