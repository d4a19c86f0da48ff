// Package state classifies a workspace into one of a small set of
// readiness states. Classification is a pure function of its inputs: it
// performs no I/O, so callers gather facts first and classify second.
package state

import "github.com/HendryAvila/nexus/internal/scanner"

// SystemState is the workspace readiness state.
type SystemState string

const (
	// FirstTimeWithDefaults: goals are missing or still a template.
	FirstTimeWithDefaults SystemState = "first_time_with_defaults"
	// GoalsNotPersonalized is reserved. Classify never returns it; the
	// instruction builder treats it like FirstTimeWithDefaults.
	GoalsNotPersonalized SystemState = "goals_not_personalized"
	// OperationalWithActiveProjects: personalized, with work in progress.
	OperationalWithActiveProjects SystemState = "operational_with_active_projects"
	// Operational: personalized, nothing in progress.
	Operational SystemState = "operational"
	// Resume: the caller is continuing an interrupted session.
	Resume SystemState = "resume"
)

// Inputs are the facts the classifier needs.
type Inputs struct {
	ResumeMode      bool
	GoalsExist      bool
	GoalsTemplate   bool
	ProjectStatuses []scanner.Status
}

// Classify returns the first matching state in priority order:
// resume, missing goals, template goals, any in-progress project,
// otherwise operational.
func Classify(in Inputs) SystemState {
	switch {
	case in.ResumeMode:
		return Resume
	case !in.GoalsExist, in.GoalsTemplate:
		return FirstTimeWithDefaults
	case anyInProgress(in.ProjectStatuses):
		return OperationalWithActiveProjects
	default:
		return Operational
	}
}

// FirstTime reports whether s is one of the not-yet-personalized states.
func (s SystemState) FirstTime() bool {
	return s == FirstTimeWithDefaults || s == GoalsNotPersonalized
}

func anyInProgress(statuses []scanner.Status) bool {
	for _, st := range statuses {
		if st == scanner.StatusInProgress {
			return true
		}
	}
	return false
}
