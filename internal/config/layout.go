package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace layout. All paths are relative to the workspace root and use
// forward slashes; join them with filepath.FromSlash before touching disk.
const (
	SystemDir      = "00-system"
	SystemSkillDir = "00-system/skills"
	VersionFile    = "00-system/VERSION"

	MemoryDir         = "01-memory"
	GoalsFile         = "01-memory/goals.md"
	UserConfigFile    = "01-memory/user-config.md"
	CoreLearningsFile = "01-memory/core-learnings.md"

	ProjectsDir   = "02-projects"
	OnboardingDir = "02-projects/00-onboarding"

	UserSkillDir = "03-skills"

	WorkspaceMapFile = "04-workspace/workspace-map.md"

	EnvFile   = ".env"
	BackupDir = ".nexus-backups"

	ReadmeFile = "README.md"
	AgentFile  = "CLAUDE.md"
)

// Project sub-folders, in the order they are presented.
const (
	PlanningDir  = "01-planning"
	ResourcesDir = "02-resources"
	WorkingDir   = "03-working"
	OutputsDir   = "04-outputs"

	OverviewFile = "overview.md"
	StepsFile    = "steps.md"
	SkillFile    = "SKILL.md"
)

// SyncPaths are the upstream-owned paths replaced by a sync.
var SyncPaths = []string{SystemDir, AgentFile, ReadmeFile}

// Path joins a slash-separated workspace-relative path onto root.
func Path(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Rel returns path relative to root in slash form. If path is not under
// root it is returned unchanged.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// FindWorkspaceRoot walks up from the current working directory looking
// for a 00-system/ directory. If none is found, returns cwd.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return findRootFrom(dir), nil
}

func findRootFrom(dir string) string {
	current := dir
	for {
		candidate := filepath.Join(current, SystemDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root. The caller treats cwd as an
			// uninitialized workspace.
			return dir
		}
		current = parent
	}
}
