package config

import (
	"errors"
	"fmt"
	"strings"
)

// Priority ranks onboarding items for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// OnboardingItem describes one onboarding sub-task.
type OnboardingItem struct {
	Key              string   `json:"key"`
	DisplayName      string   `json:"display_name"`
	Trigger          string   `json:"trigger"`
	Priority         Priority `json:"priority"`
	EstimatedMinutes int      `json:"estimated_minutes"`
}

// Tables bundles the static lookup data. It is built once and shared
// read-only by the scanner, the stats aggregator, and the service.
type Tables struct {
	// CoreSkills and LearningSkills are exact skill names used for tiering.
	CoreSkills     []string
	LearningSkills []string

	// Onboarding is ordered; the order is the display order.
	Onboarding []OnboardingItem

	// IntegrationEnvVars maps a lowercased integration folder name to the
	// environment variable that must be set for it to be active.
	IntegrationEnvVars map[string]string

	// NavigationFiles must exist for the workspace to be navigable.
	NavigationFiles []string
}

// DefaultTables returns the tables shipped with Nexus.
func DefaultTables() Tables {
	return Tables{
		CoreSkills: []string{
			"create-project",
			"execute-project",
			"close-session",
			"create-skill",
		},
		LearningSkills: []string{
			"setup-goals",
			"setup-workspace",
			"learn-projects",
			"learn-skills",
			"learn-integrations",
			"learn-nexus",
		},
		Onboarding: []OnboardingItem{
			{Key: "setup_goals", DisplayName: "Set up your goals", Trigger: "setup goals", Priority: PriorityHigh, EstimatedMinutes: 8},
			{Key: "setup_workspace", DisplayName: "Organize your workspace", Trigger: "setup workspace", Priority: PriorityHigh, EstimatedMinutes: 10},
			{Key: "learn_projects", DisplayName: "Learn how projects work", Trigger: "learn projects", Priority: PriorityMedium, EstimatedMinutes: 8},
			{Key: "learn_skills", DisplayName: "Learn how skills work", Trigger: "learn skills", Priority: PriorityMedium, EstimatedMinutes: 10},
			{Key: "learn_integrations", DisplayName: "Connect your tools", Trigger: "learn integrations", Priority: PriorityMedium, EstimatedMinutes: 10},
			{Key: "learn_nexus", DisplayName: "Learn the Nexus system", Trigger: "learn nexus", Priority: PriorityLow, EstimatedMinutes: 15},
		},
		IntegrationEnvVars: map[string]string{
			"airtable": "AIRTABLE_API_KEY",
			"beam":     "BEAM_API_KEY",
			"github":   "GITHUB_TOKEN",
			"google":   "GOOGLE_CLIENT_ID",
			"hubspot":  "HUBSPOT_ACCESS_TOKEN",
			"linear":   "LINEAR_API_KEY",
			"notion":   "NOTION_API_KEY",
			"slack":    "SLACK_BOT_TOKEN",
		},
		NavigationFiles: []string{
			"00-system/system-map.md",
			"00-system/orchestrator.md",
			"01-memory/memory-map.md",
		},
	}
}

// Validate reports construction errors: empty or duplicate keys, and
// skills listed in both tiers.
func (t Tables) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(t.Onboarding))
	for i, item := range t.Onboarding {
		if item.Key == "" {
			errs = append(errs, fmt.Errorf("onboarding[%d]: empty key", i))
			continue
		}
		if seen[item.Key] {
			errs = append(errs, fmt.Errorf("onboarding: duplicate key %q", item.Key))
		}
		seen[item.Key] = true
	}

	core := make(map[string]bool, len(t.CoreSkills))
	for _, name := range t.CoreSkills {
		core[name] = true
	}
	for _, name := range t.LearningSkills {
		if core[name] {
			errs = append(errs, fmt.Errorf("skill %q is both core and learning", name))
		}
	}

	for name, env := range t.IntegrationEnvVars {
		if name != strings.ToLower(name) {
			errs = append(errs, fmt.Errorf("integration %q: key must be lowercase", name))
		}
		if env == "" {
			errs = append(errs, fmt.Errorf("integration %q: empty env var", name))
		}
	}

	for i, nav := range t.NavigationFiles {
		if nav == "" {
			errs = append(errs, fmt.Errorf("navigation[%d]: empty path", i))
		}
	}

	return errors.Join(errs...)
}

// MustTables panics if t is invalid. Tables are static program data, so an
// invalid table is a programming error rather than a runtime condition.
func MustTables(t Tables) Tables {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("config: invalid tables: %v", err))
	}
	return t
}

// OnboardingKeys returns the onboarding keys in display order.
func (t Tables) OnboardingKeys() []string {
	keys := make([]string, len(t.Onboarding))
	for i, item := range t.Onboarding {
		keys[i] = item.Key
	}
	return keys
}
