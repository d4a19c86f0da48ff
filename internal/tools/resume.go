package tools

import (
	"context"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ResumeTool handles the nexus_resume MCP tool.
type ResumeTool struct {
	svc *service.Service
}

// NewResumeTool creates a ResumeTool.
func NewResumeTool(svc *service.Service) *ResumeTool {
	return &ResumeTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ResumeTool) Definition() mcp.Tool {
	return mcp.NewTool("nexus_resume",
		mcp.WithDescription(
			"Resume an interrupted session (for example after context compaction). "+
				"Returns the startup bundle in resume mode: if a project is in progress "+
				"the instructions say to continue it immediately, without a menu.",
		),
	)
}

// Handle processes the nexus_resume tool call.
func (t *ResumeTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.svc.Resume(ctx), "")
}
