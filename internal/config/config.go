// Package config holds everything Nexus needs to know before it touches a
// workspace: runtime settings (viper), the fixed workspace layout, and the
// static tables that drive skill tiering, onboarding, and integrations.
//
// Design principles:
//   - Settings are read once at the edge (cmd/nexus) and passed down as values.
//   - Layout helpers are pure path functions, like the rest of the package.
//   - Tables are injected so tests can substitute smaller ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SettingsFileName is the optional per-workspace settings file.
const SettingsFileName = ".nexus.yaml"

// DefaultUpstreamURL is used when no upstream URL is configured.
const DefaultUpstreamURL = "https://github.com/HendryAvila/nexus-template.git"

// Settings is the resolved runtime configuration.
type Settings struct {
	Workspace string         `mapstructure:"workspace"`
	Upstream  UpstreamConfig `mapstructure:"upstream"`
	Git       GitConfig      `mapstructure:"git"`
	Log       LogConfig      `mapstructure:"log"`
}

// UpstreamConfig describes the git remote that owns the system files.
type UpstreamConfig struct {
	URL    string `mapstructure:"url"`
	Remote string `mapstructure:"remote"`
	Branch string `mapstructure:"branch"`
}

// GitConfig bounds every git invocation.
type GitConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	RetryMaxElapsed time.Duration `mapstructure:"retry_max_elapsed"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workspace", "")
	v.SetDefault("upstream.url", DefaultUpstreamURL)
	v.SetDefault("upstream.remote", "upstream")
	v.SetDefault("upstream.branch", "main")
	v.SetDefault("git.timeout", 30*time.Second)
	v.SetDefault("git.fetch_timeout", 60*time.Second)
	v.SetDefault("git.retry_max_elapsed", 20*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and the NEXUS_ env
// binding in place. configFile may be empty.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	return v
}

// Load resolves Settings from v. When no explicit config file was set,
// the workspace's .nexus.yaml is read if it exists. A missing settings
// file is not an error; a malformed one is.
func Load(v *viper.Viper) (Settings, error) {
	if v.ConfigFileUsed() == "" {
		root, err := resolveWorkspace(v.GetString("workspace"))
		if err != nil {
			return Settings{}, err
		}
		candidate := filepath.Join(root, SettingsFileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			v.SetConfigFile(candidate)
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading settings %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}

	root, err := resolveWorkspace(s.Workspace)
	if err != nil {
		return Settings{}, err
	}
	s.Workspace = root
	s.applyDefaults()
	return s, nil
}

// Default returns Settings for root with every default applied. Used by
// tests and by callers that do not need viper.
func Default(root string) Settings {
	s := Settings{Workspace: root}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Upstream.URL == "" {
		s.Upstream.URL = DefaultUpstreamURL
	}
	if s.Upstream.Remote == "" {
		s.Upstream.Remote = "upstream"
	}
	if s.Upstream.Branch == "" {
		s.Upstream.Branch = "main"
	}
	if s.Git.Timeout <= 0 {
		s.Git.Timeout = 30 * time.Second
	}
	if s.Git.FetchTimeout <= 0 {
		s.Git.FetchTimeout = 60 * time.Second
	}
	if s.Git.RetryMaxElapsed < 0 {
		s.Git.RetryMaxElapsed = 0
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.Log.Format == "" {
		s.Log.Format = "text"
	}
}

// resolveWorkspace returns an absolute workspace root. An explicit value
// wins; otherwise the root is discovered from the working directory.
func resolveWorkspace(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolving workspace %q: %w", explicit, err)
		}
		return abs, nil
	}
	return FindWorkspaceRoot()
}
