package tools

import (
	"context"
	"strings"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// LoadSkillTool handles the nexus_load_skill MCP tool.
type LoadSkillTool struct {
	svc *service.Service
}

// NewLoadSkillTool creates a LoadSkillTool.
func NewLoadSkillTool(svc *service.Service) *LoadSkillTool {
	return &LoadSkillTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *LoadSkillTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_load_skill",
		mcp.WithDescription(
			"Load a skill's SKILL.md together with the references and scripts it declares. "+
				"User skills shadow system skills of the same name.",
		),
		mcp.WithString("skill_name",
			mcp.Required(),
			mcp.Description("Skill name, e.g. 'create-project'"),
		),
	)
}

// Handle processes the nexus_load_skill tool call.
func (t *LoadSkillTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("skill_name", ""))
	if name == "" {
		return mcp.NewToolResultError("'skill_name' is required"), nil
	}

	b := t.svc.LoadSkill(ctx, name)
	return jsonResult(b, b.Error)
}
