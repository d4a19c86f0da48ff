package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the nexus-status MCP prompt.
// It instructs the AI to present the workspace state and pending updates.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("nexus-status",
		mcp.WithPromptDescription(
			"Check the status of your Nexus workspace. "+
				"Shows projects in progress, onboarding progress, "+
				"and whether a system update is available.",
		),
	)
}

// Handle processes the nexus-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Nexus Workspace Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `nexus_list_projects` and `nexus_check_updates` to check my workspace.\n\n" +
						"Then:\n" +
						"1. Show the projects in progress with their progress and current task\n" +
						"2. Tell me how much of onboarding is done (read the nexus://workspace/stats resource)\n" +
						"3. If an update is available, list the changed files and offer `nexus_sync` with dry_run first\n" +
						"4. Suggest what I should do next",
				),
			},
		},
	}, nil
}
