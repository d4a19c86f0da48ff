package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListProjectsTool handles the nexus_list_projects MCP tool.
type ListProjectsTool struct {
	svc *service.Service
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(svc *service.Service) *ListProjectsTool {
	return &ListProjectsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_list_projects",
		mcp.WithDescription("List projects with status and task progress."),
		mcp.WithBoolean("full",
			mcp.Description("Include every header field and the overview path (default: false)"),
		),
	)
}

// Handle processes the nexus_list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.svc.ListProjects(ctx, req.GetBool("full", false)), "")
}
