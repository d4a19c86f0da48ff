package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// LoadMetadataTool handles the nexus_load_metadata MCP tool.
type LoadMetadataTool struct {
	svc *service.Service
}

// NewLoadMetadataTool creates a LoadMetadataTool.
func NewLoadMetadataTool(svc *service.Service) *LoadMetadataTool {
	return &LoadMetadataTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *LoadMetadataTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_load_metadata",
		mcp.WithDescription(
			"Return every project, skill, and integration with all header fields. "+
				"Use when the minimal lists from nexus_startup are not enough.",
		),
	)
}

// Handle processes the nexus_load_metadata tool call.
func (t *LoadMetadataTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.svc.LoadMetadata(ctx), "")
}
