package tools

import (
	"context"
	"strings"

	"github.com/HendryAvila/nexus/internal/bundle"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// LoadProjectTool handles the nexus_load_project MCP tool.
type LoadProjectTool struct {
	svc *service.Service
}

// NewLoadProjectTool creates a LoadProjectTool.
func NewLoadProjectTool(svc *service.Service) *LoadProjectTool {
	return &LoadProjectTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *LoadProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_load_project",
		mcp.WithDescription(
			"Load one project: its overview metadata plus the planning files it contains "+
				"and an index of outputs. Matches by id, folder name, or project name.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project id (e.g. '01'), folder name, or name"),
		),
		mcp.WithString("part",
			mcp.Description("Which part to index (default: all)"),
			mcp.Enum(bundle.Parts()...),
		),
	)
}

// Handle processes the nexus_load_project tool call.
func (t *LoadProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("project_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	b := t.svc.LoadProject(ctx, id, req.GetString("part", string(bundle.PartAll)))
	return jsonResult(b, b.Error)
}
