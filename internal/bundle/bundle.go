// Package bundle assembles the file bundles handed to the agent: the
// memory files embedded at startup, a project's file index, and a skill
// with its declared references and scripts. It also writes the smart
// defaults into a workspace that has never been set up.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/metadata"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/templates"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Loader reads bundles from one workspace.
type Loader struct {
	root     string
	tables   config.Tables
	scanner  *scanner.Scanner
	renderer *templates.Renderer
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(root string, tables config.Tables, sc *scanner.Scanner, renderer *templates.Renderer, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{root: root, tables: tables, scanner: sc, renderer: renderer, logger: logger}
}

// LoadedAt returns the current time in the format used by every bundle.
func LoadedAt() string {
	return timeNow().UTC().Format(time.RFC3339)
}

// MemoryContent returns the files embedded into the agent's context at
// startup, keyed by workspace-relative path: every navigation file that
// exists, plus goals and core learnings when present.
func (l *Loader) MemoryContent() map[string]string {
	files := append([]string(nil), l.tables.NavigationFiles...)
	files = append(files, config.GoalsFile, config.CoreLearningsFile)

	content := make(map[string]string, len(files))
	for _, rel := range files {
		data, err := os.ReadFile(config.Path(l.root, rel))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				l.logger.Warn("reading memory file", "path", rel, "error", err)
			}
			continue
		}
		content[rel] = string(data)
	}
	return content
}

// EnsureDefaults writes the smart-default memory files when the goals file
// is missing. Existing files are never overwritten. It returns the
// workspace-relative paths it created.
func (l *Loader) EnsureDefaults() ([]string, error) {
	if _, err := os.Stat(config.Path(l.root, config.GoalsFile)); err == nil {
		return nil, nil
	}

	data := templates.DefaultsData{
		Created:        timeNow().Format(time.DateOnly),
		OnboardingKeys: l.tables.OnboardingKeys(),
	}

	var created []string
	for _, d := range templates.Defaults {
		path := config.Path(l.root, d.Path)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		content, err := l.renderer.Render(d.Template, data)
		if err != nil {
			return created, err
		}
		if err := writeFile(path, content); err != nil {
			return created, err
		}
		created = append(created, d.Path)
	}

	if len(created) > 0 {
		l.logger.Info("created smart defaults", "files", created)
	}
	return created, nil
}

// FileEntry is one indexed file: its absolute path and header fields.
type FileEntry struct {
	Path     string         `json:"path"`
	Metadata map[string]any `json:"metadata"`
}

// fileEntry extracts the header of path. Files without a header get empty
// metadata; a malformed header is reported under "error".
func fileEntry(path string) FileEntry {
	meta := make(map[string]any)
	for k, v := range metadata.Extract(path).Fields() {
		if k == metadata.FieldFilePath || k == metadata.FieldFileName {
			continue
		}
		meta[k] = v
	}
	return FileEntry{Path: path, Metadata: meta}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
