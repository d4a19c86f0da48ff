// Package scanner discovers projects, skills, and integrations in a
// workspace. Every scan is a fresh walk of the file tree: nothing is cached
// between calls.
//
// Missing roots yield empty results. A single unreadable or malformed file
// never aborts a scan; it is recorded in Skipped and the walk continues.
package scanner

import (
	"log/slog"

	"github.com/HendryAvila/nexus/internal/config"
)

// Scanner walks one workspace.
type Scanner struct {
	root   string
	tables config.Tables
	logger *slog.Logger
}

// Skip records a file that was ignored and why.
type Skip struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// New creates a Scanner for the workspace at root.
func New(root string, tables config.Tables, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{root: root, tables: tables, logger: logger}
}

// Root returns the workspace root.
func (s *Scanner) Root() string {
	return s.root
}

func (s *Scanner) skip(skipped []Skip, path string, err error) []Skip {
	rel := config.Rel(s.root, path)
	s.logger.Debug("skipping file", "path", rel, "error", err)
	return append(skipped, Skip{Path: rel, Error: err.Error()})
}
