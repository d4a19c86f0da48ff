// Package instructions turns a classified workspace state into an action
// plan for the driving agent. Build is a pure mapping: the same state,
// projects, and hints always produce the same plan.
package instructions

import (
	"fmt"
	"math"

	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/state"
)

// Action is what the agent should do first.
type Action string

const (
	ActionDisplayMenu     Action = "display_menu"
	ActionContinueWorking Action = "continue_working"
	ActionContinue        Action = "continue"
)

// ExecutionMode tells the agent whether to wait for the user.
type ExecutionMode string

const (
	ModeInteractive ExecutionMode = "interactive"
	ModeImmediate   ExecutionMode = "immediate"
)

// Instructions is the plan handed to the agent.
type Instructions struct {
	Action            Action        `json:"action"`
	ExecutionMode     ExecutionMode `json:"execution_mode"`
	Message           string        `json:"message"`
	Reason            string        `json:"reason"`
	Workflow          []string      `json:"workflow"`
	DisplayHints      []string      `json:"display_hints,omitempty"`
	SuggestOnboarding bool          `json:"suggest_onboarding"`
	SuggestProject    string        `json:"suggest_project,omitempty"`
}

// Build returns the plan for s. projects must be in scan order; the first
// IN_PROGRESS project is the one a resumed session continues.
func Build(s state.SystemState, projects []scanner.Project, hints []string) Instructions {
	var in Instructions

	switch {
	case s.FirstTime():
		in = firstTime()
	case s == state.OperationalWithActiveProjects:
		in = withActive(projects)
	case s == state.Resume:
		in = resume(projects)
	default:
		in = operational()
	}

	if len(hints) > 0 {
		in.DisplayHints = append([]string(nil), hints...)
	}
	return in
}

func firstTime() Instructions {
	return Instructions{
		Action:        ActionDisplayMenu,
		ExecutionMode: ModeInteractive,
		Message:       "Welcome to Nexus. Your workspace is ready with smart defaults.",
		Reason:        "Goals have not been personalized yet",
		Workflow: []string{
			"Display the Nexus banner",
			"Explain that goals and workspace map are smart defaults until personalized",
			"Suggest onboarding: say 'setup goals' to personalize (about 8 minutes)",
			"Display the main menu",
			"Wait for the user's choice",
		},
		SuggestOnboarding: true,
	}
}

func withActive(projects []scanner.Project) Instructions {
	active := activeProjects(projects)
	step := fmt.Sprintf("Highlight %d active project(s) with id, name, and progress", len(active))
	if len(active) > 0 {
		p := active[0]
		step = fmt.Sprintf("%s; most recent: %q (%d%% complete)", step, p.Name, percent(p.Progress))
	}
	return Instructions{
		Action:        ActionDisplayMenu,
		ExecutionMode: ModeInteractive,
		Message:       "Welcome back. You have work in progress.",
		Reason:        fmt.Sprintf("%d project(s) in progress", len(active)),
		Workflow: []string{
			"Display the Nexus banner",
			step,
			"Offer to continue a project or pick another menu option",
			"Display the main menu",
			"Wait for the user's choice",
		},
	}
}

func operational() Instructions {
	return Instructions{
		Action:        ActionDisplayMenu,
		ExecutionMode: ModeInteractive,
		Message:       "Welcome back. No projects are in progress.",
		Reason:        "Workspace is personalized and has no active projects",
		Workflow: []string{
			"Display the Nexus banner",
			"Suggest creating a project or running a skill",
			"Display the main menu",
			"Wait for the user's choice",
		},
	}
}

func resume(projects []scanner.Project) Instructions {
	active := activeProjects(projects)
	if len(active) == 0 {
		return Instructions{
			Action:        ActionContinue,
			ExecutionMode: ModeInteractive,
			Message:       "Session resumed. No project is in progress.",
			Reason:        "Resume requested without an active project",
			Workflow: []string{
				"Skip the banner and menu",
				"Acknowledge the resumed session in one line",
				"Await the user's instructions",
			},
		}
	}

	p := active[0]
	return Instructions{
		Action:        ActionContinueWorking,
		ExecutionMode: ModeImmediate,
		Message:       fmt.Sprintf("Resuming %q.", p.Name),
		Reason:        "Resume requested with an active project",
		Workflow: []string{
			"Skip the banner and menu",
			fmt.Sprintf("Resume project %q (%d%% complete)", p.Name, percent(p.Progress)),
			fmt.Sprintf("Load the project with load_project(%q)", p.ID),
			nextStep(p),
			"Continue working without waiting for confirmation",
		},
		SuggestProject: p.ID,
	}
}

func nextStep(p scanner.Project) string {
	if p.CurrentTask == "" {
		return "Review the project's steps to find the next task"
	}
	return fmt.Sprintf("Next task: %s", p.CurrentTask)
}

func activeProjects(projects []scanner.Project) []scanner.Project {
	var out []scanner.Project
	for _, p := range projects {
		if p.Status == scanner.StatusInProgress {
			out = append(out, p)
		}
	}
	return out
}

func percent(progress float64) int {
	return int(math.Round(progress * 100))
}
