// Package prompts implements MCP prompt handlers for Nexus.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the nexus-start MCP prompt.
// It tells the AI to bootstrap the session and follow the returned plan.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("nexus-start",
		mcp.WithPromptDescription(
			"Start a Nexus session. Loads memory, projects, and skills, "+
				"then shows the menu or continues the work in progress.",
		),
		mcp.WithArgument("resume",
			mcp.ArgumentDescription("'true' to continue an interrupted session. Default: false"),
		),
	)
}

// Handle processes the nexus-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	resume := false
	if args := req.Params.Arguments; args != nil {
		resume = strings.EqualFold(strings.TrimSpace(args["resume"]), "true")
	}

	if resume {
		return &mcp.GetPromptResult{
			Description: "Resume Nexus session",
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.NewTextContent(
						"Continue my Nexus session.\n\n" +
							"Please:\n" +
							"1. Run `nexus_resume`\n" +
							"2. If `instructions.execution_mode` is 'immediate', follow the workflow right away without showing a menu\n" +
							"3. Otherwise wait for my next instruction",
					),
				},
			},
		}, nil
	}

	return &mcp.GetPromptResult{
		Description: "Start Nexus session",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Start my Nexus session.\n\n" +
						"Please:\n" +
						"1. Run `nexus_startup`\n" +
						"2. Read `memory_content` so you know my goals and workspace\n" +
						"3. Follow `instructions.workflow` step by step\n" +
						"4. Show every entry of `stats.display_hints` to me\n" +
						"5. If `smart_defaults_created` is not empty, tell me which files were created and that I can personalize them",
				),
			},
		},
	}, nil
}
