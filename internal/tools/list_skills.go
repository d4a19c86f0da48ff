package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListSkillsTool handles the nexus_list_skills MCP tool.
type ListSkillsTool struct {
	svc *service.Service
}

// NewListSkillsTool creates a ListSkillsTool.
func NewListSkillsTool(svc *service.Service) *ListSkillsTool {
	return &ListSkillsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListSkillsTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_list_skills",
		mcp.WithDescription("List user and system skills, core skills first."),
		mcp.WithBoolean("full",
			mcp.Description("Include declared references, scripts, and the SKILL.md path (default: false)"),
		),
	)
}

// Handle processes the nexus_list_skills tool call.
func (t *ListSkillsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.svc.ListSkills(ctx, req.GetBool("full", false)), "")
}
