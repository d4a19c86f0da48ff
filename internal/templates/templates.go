// Package templates renders the smart-default memory files written into a
// fresh workspace. Templates are embedded in the binary so a first run
// needs nothing from disk.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/HendryAvila/nexus/internal/config"
)

//go:embed defaults/*.md.tmpl
var defaultsFS embed.FS

// Name identifies one embedded template.
type Name string

const (
	Goals         Name = "goals.md.tmpl"
	UserConfig    Name = "user-config.md.tmpl"
	CoreLearnings Name = "core-learnings.md.tmpl"
	WorkspaceMap  Name = "workspace-map.md.tmpl"
)

// Default pairs a template with the workspace file it produces.
type Default struct {
	Template Name
	Path     string
}

// Defaults lists the files created for a workspace without goals, in
// creation order.
var Defaults = []Default{
	{Goals, config.GoalsFile},
	{UserConfig, config.UserConfigFile},
	{CoreLearnings, config.CoreLearningsFile},
	{WorkspaceMap, config.WorkspaceMapFile},
}

// DefaultsData is the data every default template receives.
type DefaultsData struct {
	Created        string
	OnboardingKeys []string
}

// Renderer renders embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Option("missingkey=error").ParseFS(defaultsFS, "defaults/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name Name, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
