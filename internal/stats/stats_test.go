package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/updater"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := config.Path(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- ReadOnboarding ---

func TestReadOnboarding(t *testing.T) {
	keys := config.DefaultTables().OnboardingKeys()
	root := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    map[string]bool
	}{
		{"no header", "# Config\n", map[string]bool{}},
		{"malformed header", "---\nlearning_tracker: [\n---\n", map[string]bool{}},
		{"tracker not a map", "---\nlearning_tracker: yes\n---\n", map[string]bool{}},
		{"partial", "---\nlearning_tracker:\n  completed:\n    setup_goals: true\n    learn_nexus: false\n---\n",
			map[string]bool{"setup_goals": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, root, "user-config.md", tt.content)
			got := ReadOnboarding(path, keys)
			if len(got) != len(keys) {
				t.Fatalf("got %d keys, want %d", len(got), len(keys))
			}
			for _, k := range keys {
				if got[k] != tt.want[k] {
					t.Errorf("%s = %v, want %v", k, got[k], tt.want[k])
				}
			}
		})
	}

	missing := ReadOnboarding(filepath.Join(root, "nope.md"), keys)
	for k, v := range missing {
		if v {
			t.Errorf("missing file: %s should be false", k)
		}
	}
}

// --- IntegrationsConfigured ---

func TestIntegrationsConfigured(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"section with subsection", "# Me\n## Integrations\n### Notion\nworkspace: x\n", true},
		{"empty section", "## Integrations\n\n## Other\n### Not here\n", false},
		{"subsection under other heading", "## Tools\n### Notion\n", false},
		{"case insensitive heading", "## integrations\n### Slack\n", true},
		{"no section", "# Me\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, root, "cfg.md", tt.content)
			if got := IntegrationsConfigured(path); got != tt.want {
				t.Errorf("IntegrationsConfigured = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Aggregate ---

func TestAggregate_CountsAndFlags(t *testing.T) {
	root := t.TempDir()
	write(t, root, "00-system/system-map.md", "map")
	write(t, root, "01-memory/memory-map.md", "map")
	write(t, root, config.UserConfigFile,
		"---\nlearning_tracker:\n  completed:\n    setup_goals: true\n    setup_workspace: true\n---\n## Integrations\n### Notion\n")

	in := Inputs{
		Projects: scanner.ProjectScan{Projects: []scanner.Project{
			{ID: "01", Status: scanner.StatusInProgress},
			{ID: "02", Status: scanner.StatusComplete},
		}},
		Skills: scanner.SkillScan{Skills: []scanner.Skill{
			{Name: "a", Path: "03-skills/a"},
			{Name: "b", Path: "00-system/skills/b"},
			{Name: "c", Path: "00-system/skills/cat/c"},
		}},
		Integrations: []scanner.Integration{{Name: "notion", Active: true}, {Name: "slack"}},
		GoalsExist:   true,
		// workspace map missing
	}

	s := NewAggregator(root, config.DefaultTables()).Aggregate(in)

	if s.TotalProjects != 2 || s.ActiveProjects != 1 {
		t.Errorf("projects = %d/%d", s.ActiveProjects, s.TotalProjects)
	}
	if s.TotalSkills != 3 || s.UserSkills != 1 || s.SystemSkills != 2 {
		t.Errorf("skills = %d total, %d user, %d system", s.TotalSkills, s.UserSkills, s.SystemSkills)
	}
	if s.NavigationFilesPresent != 2 || s.NavigationFilesRequired != 3 {
		t.Errorf("navigation = %d/%d", s.NavigationFilesPresent, s.NavigationFilesRequired)
	}
	if len(s.MissingNavigation) != 1 || s.MissingNavigation[0] != "00-system/orchestrator.md" {
		t.Errorf("MissingNavigation = %v", s.MissingNavigation)
	}
	if !s.GoalsPersonalized {
		t.Error("goals exist and are not a template")
	}
	if s.WorkspaceConfigured {
		t.Error("missing workspace map is not configured")
	}
	if !s.IntegrationsConfigured {
		t.Error("integrations section has a subsection")
	}
	if len(s.ActiveIntegrations) != 1 || s.ActiveIntegrations[0] != "notion" {
		t.Errorf("ActiveIntegrations = %v", s.ActiveIntegrations)
	}
	if len(s.PendingOnboarding) != 4 || s.PendingOnboarding[0].Key != "learn_projects" {
		t.Errorf("PendingOnboarding = %+v", s.PendingOnboarding)
	}
	if s.OnboardingComplete {
		t.Error("onboarding is not complete")
	}
}

func TestAggregate_HintOrder(t *testing.T) {
	root := t.TempDir()
	in := Inputs{
		GoalsExist:    true,
		GoalsTemplate: true,
		Update:        &updater.CheckResult{Checked: true, UpdateAvailable: true, LocalVersion: "1.0.0", UpstreamVersion: "1.1.0"},
	}

	s := NewAggregator(root, config.DefaultTables()).Aggregate(in)

	if len(s.DisplayHints) != 4 {
		t.Fatalf("hints = %v, want 4", s.DisplayHints)
	}
	wantPrefixes := []string{"Nexus update available", "Onboarding 0/6", "Goals are still", "Workspace map"}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(s.DisplayHints[i], prefix) {
			t.Errorf("hint[%d] = %q, want prefix %q", i, s.DisplayHints[i], prefix)
		}
	}
	if !strings.Contains(s.DisplayHints[0], "v1.0.0 -> v1.1.0") {
		t.Errorf("update hint should show versions: %q", s.DisplayHints[0])
	}
	if !strings.Contains(s.DisplayHints[1], "setup goals") {
		t.Errorf("onboarding hint should name the next trigger: %q", s.DisplayHints[1])
	}
}

func TestAggregate_NoHintsWhenSettled(t *testing.T) {
	root := t.TempDir()
	var completed strings.Builder
	completed.WriteString("---\nlearning_tracker:\n  completed:\n")
	for _, k := range config.DefaultTables().OnboardingKeys() {
		completed.WriteString("    " + k + ": true\n")
	}
	completed.WriteString("---\n")
	write(t, root, config.UserConfigFile, completed.String())

	in := Inputs{
		GoalsExist:         true,
		WorkspaceMapExists: true,
		Update:             &updater.CheckResult{Checked: true},
	}
	s := NewAggregator(root, config.DefaultTables()).Aggregate(in)

	if len(s.DisplayHints) != 0 {
		t.Errorf("hints = %v, want none", s.DisplayHints)
	}
	if !s.OnboardingComplete || len(s.PendingOnboarding) != 0 {
		t.Errorf("onboarding should be complete: %+v", s.PendingOnboarding)
	}
}
