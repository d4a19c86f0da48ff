// Package resources implements MCP resource handlers for Nexus.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (nexus://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/nexus/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatsURI addresses the workspace statistics resource.
const StatsURI = "nexus://workspace/stats"

// Handler manages Nexus resource endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// StatsResource returns the MCP resource definition for workspace stats.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Nexus Workspace Stats",
		mcp.WithResourceDescription("System state, project and skill counts, onboarding progress, and hints"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns the workspace status as JSON. Reading it never
// writes to the workspace or contacts upstream.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.svc.Status(ctx), "", "  ")
	if err != nil {
		return errorResource(req.Params.URI, fmt.Sprintf("marshaling stats: %v", err)), nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
