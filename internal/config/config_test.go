package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// --- Settings ---

func TestLoad_DefaultsWithoutSettingsFile(t *testing.T) {
	root := t.TempDir()
	v := NewViper("")
	v.Set("workspace", root)

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Workspace != root {
		t.Errorf("Workspace = %q, want %q", s.Workspace, root)
	}
	if s.Upstream.URL != DefaultUpstreamURL {
		t.Errorf("Upstream.URL = %q, want default", s.Upstream.URL)
	}
	if s.Upstream.Remote != "upstream" || s.Upstream.Branch != "main" {
		t.Errorf("Upstream = %+v, want upstream/main", s.Upstream)
	}
	if s.Git.Timeout != 30*time.Second {
		t.Errorf("Git.Timeout = %v, want 30s", s.Git.Timeout)
	}
	if s.Git.FetchTimeout != 60*time.Second {
		t.Errorf("Git.FetchTimeout = %v, want 60s", s.Git.FetchTimeout)
	}
}

func TestLoad_ReadsWorkspaceSettingsFile(t *testing.T) {
	root := t.TempDir()
	content := "upstream:\n  url: https://example.com/fork.git\n  branch: stable\ngit:\n  timeout: 5s\n"
	if err := os.WriteFile(filepath.Join(root, SettingsFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViper("")
	v.Set("workspace", root)

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Upstream.URL != "https://example.com/fork.git" {
		t.Errorf("Upstream.URL = %q", s.Upstream.URL)
	}
	if s.Upstream.Branch != "stable" {
		t.Errorf("Upstream.Branch = %q, want stable", s.Upstream.Branch)
	}
	if s.Git.Timeout != 5*time.Second {
		t.Errorf("Git.Timeout = %v, want 5s", s.Git.Timeout)
	}
	// Unset keys keep defaults.
	if s.Upstream.Remote != "upstream" {
		t.Errorf("Upstream.Remote = %q, want upstream", s.Upstream.Remote)
	}
}

func TestLoad_MalformedSettingsFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, SettingsFileName), []byte("upstream: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViper("")
	v.Set("workspace", root)

	if _, err := Load(v); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("NEXUS_UPSTREAM_BRANCH", "develop")

	v := NewViper("")
	v.Set("workspace", root)

	s, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Upstream.Branch != "develop" {
		t.Errorf("Upstream.Branch = %q, want develop", s.Upstream.Branch)
	}
}

func TestDefault(t *testing.T) {
	s := Default("/ws")
	if s.Workspace != "/ws" {
		t.Errorf("Workspace = %q", s.Workspace)
	}
	if s.Log.Level != "info" || s.Log.Format != "text" {
		t.Errorf("Log = %+v", s.Log)
	}
}

// --- Layout ---

func TestPathAndRel(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "ws")
	p := Path(root, GoalsFile)
	if p != filepath.Join(root, "01-memory", "goals.md") {
		t.Errorf("Path = %q", p)
	}
	if got := Rel(root, p); got != GoalsFile {
		t.Errorf("Rel = %q, want %q", got, GoalsFile)
	}
}

func TestFindRootFrom(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, SystemDir), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "02-projects", "01-foo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findRootFrom(nested); got != root {
		t.Errorf("findRootFrom(nested) = %q, want %q", got, root)
	}

	other := t.TempDir()
	if got := findRootFrom(other); got != other {
		t.Errorf("findRootFrom(no workspace) = %q, want cwd %q", got, other)
	}
}

// --- Tables ---

func TestDefaultTables_Valid(t *testing.T) {
	if err := DefaultTables().Validate(); err != nil {
		t.Fatalf("DefaultTables invalid: %v", err)
	}
	if n := len(DefaultTables().Onboarding); n != 6 {
		t.Errorf("onboarding items = %d, want 6", n)
	}
}

func TestTablesValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tables)
		wantSub string
	}{
		{"duplicate onboarding key", func(tb *Tables) {
			tb.Onboarding = append(tb.Onboarding, tb.Onboarding[0])
		}, "duplicate key"},
		{"empty onboarding key", func(tb *Tables) {
			tb.Onboarding = append(tb.Onboarding, OnboardingItem{})
		}, "empty key"},
		{"skill in both tiers", func(tb *Tables) {
			tb.LearningSkills = append(tb.LearningSkills, tb.CoreSkills[0])
		}, "both core and learning"},
		{"uppercase integration", func(tb *Tables) {
			tb.IntegrationEnvVars["Notion"] = "X"
		}, "lowercase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := DefaultTables()
			tt.mutate(&tb)
			err := tb.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestMustTables_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTables should panic on invalid tables")
		}
	}()
	tb := DefaultTables()
	tb.Onboarding = append(tb.Onboarding, OnboardingItem{})
	MustTables(tb)
}
