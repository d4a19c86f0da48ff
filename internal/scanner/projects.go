package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/metadata"
)

// Status is a project lifecycle status.
type Status string

const (
	StatusPlanning   Status = "PLANNING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOnHold     Status = "ON_HOLD"
	StatusComplete   Status = "COMPLETE"
	StatusArchived   Status = "ARCHIVED"
)

var knownStatuses = map[Status]bool{
	StatusPlanning:   true,
	StatusInProgress: true,
	StatusOnHold:     true,
	StatusComplete:   true,
	StatusArchived:   true,
}

// NormalizeStatus maps header spellings like "in progress" or "on-hold"
// onto a Status. Empty input is PLANNING; unknown values are kept
// upper-cased so they still surface in listings.
func NormalizeStatus(raw string) Status {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return StatusPlanning
	}
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "ACTIVE" {
		return StatusInProgress
	}
	return Status(s)
}

// Known reports whether s is one of the five lifecycle statuses.
func (s Status) Known() bool {
	return knownStatuses[s]
}

// Project is the scanned view of one project folder.
type Project struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Status         Status         `json:"status"`
	Description    string         `json:"description,omitempty"`
	Progress       float64        `json:"progress"`
	TasksTotal     int            `json:"tasks_total"`
	TasksCompleted int            `json:"tasks_completed"`
	CurrentTask    string         `json:"current_task,omitempty"`
	Onboarding     bool           `json:"onboarding,omitempty"`
	Path           string         `json:"path"`
	Created        string         `json:"created,omitempty"`
	Updated        string         `json:"updated,omitempty"`
	FilePath       string         `json:"_file_path,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// ProjectScan is the result of a project scan.
type ProjectScan struct {
	Projects []Project `json:"projects"`
	Skipped  []Skip    `json:"skipped,omitempty"`
}

// Active returns the projects whose status is IN_PROGRESS, in scan order.
func (ps ProjectScan) Active() []Project {
	var out []Project
	for _, p := range ps.Projects {
		if p.Status == StatusInProgress {
			out = append(out, p)
		}
	}
	return out
}

// Statuses returns the status of every project, in scan order.
func (ps ProjectScan) Statuses() []Status {
	out := make([]Status, len(ps.Projects))
	for i, p := range ps.Projects {
		out[i] = p.Status
	}
	return out
}

// projectFields are header keys mapped onto Project fields. Anything else
// goes to Extra in the full shape.
var projectFields = map[string]bool{
	"id": true, "name": true, "status": true, "description": true,
	"created": true, "updated": true,
	"tasks_total": true, "tasks_completed": true, "progress": true, "current_task": true,
	metadata.FieldFilePath: true, metadata.FieldFileName: true,
}

// Projects scans the projects root and the onboarding folder. Regular
// projects come first, each group ordered by folder name. The full shape
// adds every remaining header field and the absolute overview path.
func (s *Scanner) Projects(full bool) ProjectScan {
	var scan ProjectScan

	groups := []struct {
		pattern    string
		onboarding bool
	}{
		{filepath.Join(config.Path(s.root, config.ProjectsDir), "*", config.PlanningDir, config.OverviewFile), false},
		{filepath.Join(config.Path(s.root, config.OnboardingDir), "*", config.PlanningDir, config.OverviewFile), true},
	}

	for _, g := range groups {
		// Glob only fails on a bad pattern; a missing root yields nil.
		matches, _ := filepath.Glob(g.pattern)
		for _, overview := range matches {
			folder := filepath.Dir(filepath.Dir(overview))
			if !g.onboarding && config.Rel(s.root, folder) == config.OnboardingDir {
				continue
			}

			p, err := s.readProject(overview, folder, g.onboarding, full)
			if err != nil {
				scan.Skipped = s.skip(scan.Skipped, overview, err)
				continue
			}
			scan.Projects = append(scan.Projects, p)
		}
	}

	return scan
}

func (s *Scanner) readProject(overview, folder string, onboarding, full bool) (Project, error) {
	rec := metadata.Extract(overview)
	switch rec.Outcome {
	case metadata.NoHeader:
		return Project{}, metadata.ErrNoHeader
	case metadata.Malformed:
		return Project{}, rec.Err
	}

	h := rec.Header
	name := h.String("name")
	if name == "" {
		return Project{}, errors.New("missing required field: name")
	}

	id := h.String("id")
	if id == "" {
		id = folderPrefix(filepath.Base(folder))
	}

	p := Project{
		ID:          id,
		Name:        name,
		Status:      NormalizeStatus(h.String("status")),
		Description: h.String("description"),
		Onboarding:  onboarding,
		Path:        config.Rel(s.root, folder),
		Created:     h.String("created"),
		Updated:     h.String("updated"),
	}

	// Counts in the header are advisory; steps.md is the source of truth.
	tasks, err := CountTasks(filepath.Join(filepath.Dir(overview), config.StepsFile))
	if err != nil {
		return Project{}, fmt.Errorf("counting tasks: %w", err)
	}
	p.TasksTotal = tasks.Total
	p.TasksCompleted = tasks.Completed
	p.CurrentTask = tasks.Current
	p.Progress = tasks.Progress()

	if full {
		p.FilePath = overview
		for k, v := range h {
			if !projectFields[k] {
				if p.Extra == nil {
					p.Extra = make(map[string]any)
				}
				p.Extra[k] = v
			}
		}
	}
	return p, nil
}

// folderPrefix returns the text before the first dash, or the whole name.
func folderPrefix(name string) string {
	if i := strings.Index(name, "-"); i > 0 {
		return name[:i]
	}
	return name
}

// Tasks summarizes the checkboxes of a steps file.
type Tasks struct {
	Total     int
	Completed int
	Current   string
}

// Progress returns Completed/Total rounded to three decimals, or 0.
func (t Tasks) Progress() float64 {
	if t.Total == 0 {
		return 0
	}
	return math.Round(float64(t.Completed)/float64(t.Total)*1000) / 1000
}

// maxStepLine bounds a single line of a steps file.
const maxStepLine = 1024 * 1024

var checkboxRe = regexp.MustCompile(`^\s*[-*]\s+\[([ xX])\]\s*(.*)$`)

// CountTasks counts "- [ ]" and "- [x]" lines in path. The first unchecked
// item becomes Current. A missing file counts as zero tasks.
func CountTasks(path string) (Tasks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tasks{}, nil
		}
		return Tasks{}, err
	}
	return countTaskLines(data)
}

func countTaskLines(data []byte) (Tasks, error) {
	var t Tasks
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxStepLine)
	for sc.Scan() {
		m := checkboxRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		t.Total++
		if m[1] == "x" || m[1] == "X" {
			t.Completed++
			continue
		}
		if t.Current == "" {
			t.Current = strings.TrimSpace(m[2])
		}
	}
	if err := sc.Err(); err != nil {
		return Tasks{}, fmt.Errorf("reading steps: %w", err)
	}
	return t, nil
}
