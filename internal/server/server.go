// Package server registers the MCP tools, prompts, and resources and
// creates the server instance.
//
// No business logic lives here, only registration. Dependencies are
// resolved by the container package and handed in as a Service.
package server

import (
	"context"

	"github.com/HendryAvila/nexus/internal/prompts"
	"github.com/HendryAvila/nexus/internal/resources"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Tool is what every handler in the tools package provides.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates the MCP server with all tools, prompts, and resources
// registered against svc.
func New(svc *service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"nexus",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	for _, t := range Tools(svc) {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(svc)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)

	return s
}

// Tools returns every tool in registration order.
func Tools(svc *service.Service) []Tool {
	return []Tool{
		tools.NewStartupTool(svc),
		tools.NewResumeTool(svc),
		tools.NewLoadProjectTool(svc),
		tools.NewLoadSkillTool(svc),
		tools.NewLoadMetadataTool(svc),
		tools.NewListProjectsTool(svc),
		tools.NewListSkillsTool(svc),
		tools.NewCheckUpdatesTool(svc),
		tools.NewSyncTool(svc),
	}
}

// serverInstructions tells the AI how to drive a Nexus workspace.
func serverInstructions() string {
	return `You have access to Nexus, a workspace for projects, skills, and memory.

## SESSION START

At the beginning of EVERY session call nexus_startup before anything else.
It returns:
- system_state: first_time_with_defaults, operational_with_active_projects,
  operational, or resume
- memory_content: the user's goals, core learnings, and navigation maps
- instructions: an action, an execution_mode, and a workflow to follow
- stats.display_hints: short notices to show the user verbatim

Follow instructions.workflow in order. When execution_mode is "immediate",
act without showing a menu. When it is "interactive", show the menu and wait.

After context compaction or any interruption, call nexus_resume instead of
nexus_startup. If a project is in progress it tells you to continue it.

## PROJECTS

Projects live in 02-projects/<NN>-<name>/ with 01-planning/overview.md
(metadata) and 01-planning/steps.md (checkbox tasks). Progress is computed
from the checkboxes; mark a task done by changing "- [ ]" to "- [x]".

- nexus_list_projects: list projects and progress
- nexus_load_project: load one project by id, folder, or name

## SKILLS

Skills are folders with a SKILL.md. User skills live in 03-skills/ and
shadow system skills in 00-system/skills/ with the same name.

- nexus_list_skills: list skills, core skills first
- nexus_load_skill: load a skill and the references it declares

Load a skill BEFORE executing its workflow. Never guess a skill's steps.

## UPDATES

System files (00-system/, CLAUDE.md, README.md) come from an upstream
template. User memory, projects, and skills are never touched.

- nexus_check_updates: report whether upstream changed
- nexus_sync: apply the update. ALWAYS run with dry_run=true first, show the
  user files_to_update, and only sync for real after they confirm. If it
  fails because of uncommitted changes, ask before retrying with force=true.
  Every real sync backs up the replaced files in .nexus-backups/.

## PROMPTS

- nexus-start: start or resume a session
- nexus-status: summarize projects, onboarding, and updates`
}
