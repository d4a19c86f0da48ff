// Package stats summarizes a scanned workspace: counts, personalization
// flags, onboarding progress, and the display hints shown at startup.
package stats

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/metadata"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/updater"
)

// Stats is the aggregated view of a workspace.
type Stats struct {
	TotalProjects           int                     `json:"total_projects"`
	ActiveProjects          int                     `json:"active_projects"`
	TotalSkills             int                     `json:"total_skills"`
	UserSkills              int                     `json:"user_skills"`
	SystemSkills            int                     `json:"system_skills"`
	NavigationFilesPresent  int                     `json:"navigation_files_present"`
	NavigationFilesRequired int                     `json:"navigation_files_required"`
	MissingNavigation       []string                `json:"missing_navigation,omitempty"`
	GoalsPersonalized       bool                    `json:"goals_personalized"`
	WorkspaceConfigured     bool                    `json:"workspace_configured"`
	IntegrationsConfigured  bool                    `json:"integrations_configured"`
	ActiveIntegrations      []string                `json:"active_integrations"`
	OnboardingCompleted     map[string]bool         `json:"onboarding_completed"`
	OnboardingComplete      bool                    `json:"onboarding_complete"`
	PendingOnboarding       []config.OnboardingItem `json:"pending_onboarding"`
	Update                  *updater.CheckResult    `json:"update,omitempty"`
	DisplayHints            []string                `json:"display_hints"`
}

// Inputs are the already-gathered facts. Aggregate only reads the
// user-config file on top of them.
type Inputs struct {
	Projects     scanner.ProjectScan
	Skills       scanner.SkillScan
	Integrations []scanner.Integration

	GoalsExist    bool
	GoalsTemplate bool

	WorkspaceMapExists   bool
	WorkspaceMapTemplate bool

	// Update is nil when no check was requested.
	Update *updater.CheckResult
}

// Aggregator computes Stats for one workspace.
type Aggregator struct {
	root   string
	tables config.Tables
}

// NewAggregator creates an Aggregator for the workspace at root.
func NewAggregator(root string, tables config.Tables) *Aggregator {
	return &Aggregator{root: root, tables: tables}
}

// Aggregate builds Stats from in.
func (a *Aggregator) Aggregate(in Inputs) Stats {
	s := Stats{
		TotalProjects:           len(in.Projects.Projects),
		ActiveProjects:          len(in.Projects.Active()),
		TotalSkills:             len(in.Skills.Skills),
		NavigationFilesRequired: len(a.tables.NavigationFiles),
		GoalsPersonalized:       in.GoalsExist && !in.GoalsTemplate,
		WorkspaceConfigured:     in.WorkspaceMapExists && !in.WorkspaceMapTemplate,
		ActiveIntegrations:      scanner.ActiveIntegrations(in.Integrations),
		Update:                  in.Update,
	}
	if s.ActiveIntegrations == nil {
		s.ActiveIntegrations = []string{}
	}
	s.UserSkills, s.SystemSkills = in.Skills.Count()

	for _, nav := range a.tables.NavigationFiles {
		if _, err := os.Stat(config.Path(a.root, nav)); err == nil {
			s.NavigationFilesPresent++
		} else {
			s.MissingNavigation = append(s.MissingNavigation, nav)
		}
	}

	userConfig := config.Path(a.root, config.UserConfigFile)
	s.IntegrationsConfigured = IntegrationsConfigured(userConfig)
	s.OnboardingCompleted = ReadOnboarding(userConfig, a.tables.OnboardingKeys())

	s.PendingOnboarding = []config.OnboardingItem{}
	for _, item := range a.tables.Onboarding {
		if !s.OnboardingCompleted[item.Key] {
			s.PendingOnboarding = append(s.PendingOnboarding, item)
		}
	}
	s.OnboardingComplete = len(s.PendingOnboarding) == 0

	s.DisplayHints = a.hints(s)
	return s
}

// hints returns display hints in fixed order: update, onboarding, goals,
// workspace.
func (a *Aggregator) hints(s Stats) []string {
	hints := []string{}

	if s.Update != nil && s.Update.UpdateAvailable {
		hint := "Nexus update available"
		if s.Update.LocalVersion != "" && s.Update.UpstreamVersion != "" {
			hint += fmt.Sprintf(" (v%s -> v%s)", s.Update.LocalVersion, s.Update.UpstreamVersion)
		}
		hints = append(hints, hint+": say 'sync nexus' to update system files")
	}

	if !s.OnboardingComplete {
		next := s.PendingOnboarding[0]
		done := len(a.tables.Onboarding) - len(s.PendingOnboarding)
		hints = append(hints, fmt.Sprintf(
			"Onboarding %d/%d complete. Next: %s, say '%s' (about %d min)",
			done, len(a.tables.Onboarding), next.DisplayName, next.Trigger, next.EstimatedMinutes,
		))
	}

	if !s.GoalsPersonalized {
		hints = append(hints, "Goals are still smart defaults: say 'setup goals' to personalize them")
	}

	if !s.WorkspaceConfigured {
		hints = append(hints, "Workspace map is not configured: say 'setup workspace' to organize it")
	}

	return hints
}

// ReadOnboarding returns the completion flag of every key from the
// user-config header (learning_tracker.completed). A missing file, header,
// or key reads as false; this never fails.
func ReadOnboarding(path string, keys []string) map[string]bool {
	done := make(map[string]bool, len(keys))
	for _, k := range keys {
		done[k] = false
	}

	rec := metadata.Extract(path)
	if rec.Outcome != metadata.Found {
		return done
	}
	completed := rec.Header.Map("learning_tracker").Map("completed")
	for _, k := range keys {
		done[k] = completed.Bool(k)
	}
	return done
}

// IntegrationsConfigured reports whether the user config has an
// "## Integrations" section with at least one "### " subsection.
func IntegrationsConfigured(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	inSection := false
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case strings.HasPrefix(line, "## "):
			inSection = strings.EqualFold(strings.TrimSpace(line[3:]), "integrations")
		case strings.HasPrefix(line, "# "):
			inSection = false
		case inSection && strings.HasPrefix(line, "### "):
			return true
		}
	}
	return false
}
