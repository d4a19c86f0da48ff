package bundle

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/scanner"
)

// Part selects which project sub-folders are indexed.
type Part string

const (
	PartAll       Part = "all"
	PartPlanning  Part = "planning"
	PartResources Part = "resources"
	PartWorking   Part = "working"
	PartOutputs   Part = "outputs"
)

var partDirs = map[Part][]string{
	PartAll:       {config.PlanningDir, config.ResourcesDir, config.WorkingDir, config.OutputsDir},
	PartPlanning:  {config.PlanningDir},
	PartResources: {config.ResourcesDir},
	PartWorking:   {config.WorkingDir},
	PartOutputs:   {config.OutputsDir},
}

// Parts lists the accepted part names.
func Parts() []string {
	return []string{string(PartAll), string(PartPlanning), string(PartResources), string(PartWorking), string(PartOutputs)}
}

// ProjectBundle indexes one project's files. It carries header metadata
// per markdown file rather than full content; the agent reads what it needs.
type ProjectBundle struct {
	LoadedAt    string               `json:"loaded_at"`
	Bundle      string               `json:"bundle"`
	ProjectID   string               `json:"project_id"`
	ProjectPath string               `json:"project_path,omitempty"`
	Part        Part                 `json:"part,omitempty"`
	Project     *scanner.Project     `json:"project,omitempty"`
	Files       map[string]FileEntry `json:"files,omitempty"`
	Outputs     []string             `json:"outputs,omitempty"`
	Usage       string               `json:"_usage,omitempty"`
	Error       string               `json:"error,omitempty"`
}

const projectUsage = "Files are listed with header metadata only. Read a file's path for its content; outputs are paths relative to the project folder."

// LoadProject finds a project by id, folder name, folder prefix, or name
// (case-insensitive) and indexes the selected part. An empty part means
// all. A miss is reported in Error.
func (l *Loader) LoadProject(id string, part Part) *ProjectBundle {
	b := &ProjectBundle{LoadedAt: LoadedAt(), Bundle: "project", ProjectID: id}

	if part == "" {
		part = PartAll
	}
	dirs, ok := partDirs[part]
	if !ok {
		b.Error = fmt.Sprintf("Unknown part: %s (want one of %s)", part, strings.Join(Parts(), ", "))
		return b
	}
	b.Part = part

	p, found := findProject(l.scanner.Projects(true).Projects, id)
	if !found {
		b.Error = fmt.Sprintf("Project not found: %s", id)
		return b
	}
	b.Project = &p
	b.ProjectPath = p.Path

	folder := config.Path(l.root, p.Path)
	b.Files = make(map[string]FileEntry)
	for _, dir := range dirs {
		_ = filepath.WalkDir(filepath.Join(folder, dir), func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			b.Files[config.Rel(folder, path)] = fileEntry(path)
			return nil
		})
	}

	b.Outputs = listFiles(filepath.Join(folder, config.OutputsDir), folder)
	b.Usage = projectUsage
	return b
}

func findProject(projects []scanner.Project, id string) (scanner.Project, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return scanner.Project{}, false
	}
	for _, p := range projects {
		folder := filepath.Base(filepath.FromSlash(p.Path))
		if p.ID == id || folder == id || strings.HasPrefix(folder, id+"-") {
			return p, true
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, id) {
			return p, true
		}
	}
	return scanner.Project{}, false
}

// listFiles returns every regular file under dir, relative to base, sorted.
// A missing dir yields an empty list.
func listFiles(dir, base string) []string {
	files := []string{}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		files = append(files, config.Rel(base, path))
		return nil
	})
	sort.Strings(files)
	return files
}
