package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/HendryAvila/nexus/internal/config"
)

// Integration is a system skill category with a master skill and a
// required environment variable. It is derived on every scan.
type Integration struct {
	Name   string   `json:"name"`
	EnvVar string   `json:"env_var"`
	Active bool     `json:"active"`
	Skills []string `json:"skills"`
	Path   string   `json:"path"`
}

// Integrations lists integrations in folder-name order. An integration is
// active when its variable has a non-blank value in the workspace .env.
func (s *Scanner) Integrations() []Integration {
	base := config.Path(s.root, config.SystemSkillDir)
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	env := s.Env()

	var out []Integration
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		envVar, ok := s.tables.IntegrationEnvVars[strings.ToLower(name)]
		if !ok {
			continue
		}
		dir := filepath.Join(base, name)
		master := filepath.Join(dir, name+"-master", config.SkillFile)
		if _, err := os.Stat(master); err != nil {
			continue
		}

		out = append(out, Integration{
			Name:   name,
			EnvVar: envVar,
			Active: env[envVar] != "",
			Skills: siblingSkills(dir),
			Path:   config.Rel(s.root, dir),
		})
	}
	return out
}

// ActiveIntegrations returns the names of active integrations.
func ActiveIntegrations(list []Integration) []string {
	var names []string
	for _, in := range list {
		if in.Active {
			names = append(names, in.Name)
		}
	}
	return names
}

func siblingSkills(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	skills := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), config.SkillFile)); err == nil {
			skills = append(skills, e.Name())
		}
	}
	sort.Strings(skills)
	return skills
}

// Env reads the workspace .env file. A missing or unreadable file yields
// an empty map. Surrounding quotes are stripped; blank values are dropped.
func (s *Scanner) Env() map[string]string {
	return LoadEnv(config.Path(s.root, config.EnvFile))
}

// LoadEnv parses the env file at path without touching the process
// environment.
func LoadEnv(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return map[string]string{}
	}
	defer func() { _ = f.Close() }()

	parsed := gotenv.Parse(f)
	env := make(map[string]string, len(parsed))
	for k, v := range parsed {
		if strings.TrimSpace(v) == "" {
			continue
		}
		env[k] = v
	}
	return env
}
