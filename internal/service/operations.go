package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/HendryAvila/nexus/internal/bundle"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/updater"
)

// LoadProject returns the file index of one project.
func (s *Service) LoadProject(ctx context.Context, projectID, part string) *bundle.ProjectBundle {
	_, span := s.tracer.Start(ctx, "service.load_project", trace.WithAttributes(
		attribute.String("nexus.project", projectID),
		attribute.String("nexus.part", part),
	))
	defer span.End()

	return s.loader.LoadProject(projectID, bundle.Part(part))
}

// LoadSkill returns a skill with its declared files.
func (s *Service) LoadSkill(ctx context.Context, name string) *bundle.SkillBundle {
	_, span := s.tracer.Start(ctx, "service.load_skill", trace.WithAttributes(
		attribute.String("nexus.skill", name),
	))
	defer span.End()

	return s.loader.LoadSkill(name)
}

// MetadataCounts summarizes a metadata bundle.
type MetadataCounts struct {
	TotalProjects  int `json:"total_projects"`
	ActiveProjects int `json:"active_projects"`
	TotalSkills    int `json:"total_skills"`
}

// MetadataResult lists projects, skills, and integrations in full shape.
type MetadataResult struct {
	LoadedAt     string                `json:"loaded_at"`
	Bundle       string                `json:"bundle"`
	Projects     []scanner.Project     `json:"projects"`
	Skills       []scanner.Skill       `json:"skills"`
	Integrations []scanner.Integration `json:"integrations"`
	Stats        MetadataCounts        `json:"stats"`
	Skipped      []scanner.Skip        `json:"skipped,omitempty"`
}

// LoadMetadata returns every project and skill in full shape.
func (s *Service) LoadMetadata(ctx context.Context) *MetadataResult {
	_, span := s.tracer.Start(ctx, "service.load_metadata")
	defer span.End()

	projects := s.scanner.Projects(true)
	skills := s.scanner.Skills(true)

	return &MetadataResult{
		LoadedAt:     bundle.LoadedAt(),
		Bundle:       "metadata",
		Projects:     nonNil(projects.Projects),
		Skills:       nonNil(skills.Skills),
		Integrations: nonNil(s.scanner.Integrations()),
		Stats: MetadataCounts{
			TotalProjects:  len(projects.Projects),
			ActiveProjects: len(projects.Active()),
			TotalSkills:    len(skills.Skills),
		},
		Skipped: append(projects.Skipped, skills.Skipped...),
	}
}

// ProjectList is the result of ListProjects.
type ProjectList struct {
	LoadedAt string            `json:"loaded_at"`
	Projects []scanner.Project `json:"projects"`
	Total    int               `json:"total"`
	Active   int               `json:"active"`
	Skipped  []scanner.Skip    `json:"skipped,omitempty"`
}

// ListProjects scans projects in minimal or full shape.
func (s *Service) ListProjects(ctx context.Context, full bool) *ProjectList {
	_, span := s.tracer.Start(ctx, "service.list_projects")
	defer span.End()

	scan := s.scanner.Projects(full)
	return &ProjectList{
		LoadedAt: bundle.LoadedAt(),
		Projects: nonNil(scan.Projects),
		Total:    len(scan.Projects),
		Active:   len(scan.Active()),
		Skipped:  scan.Skipped,
	}
}

// SkillList is the result of ListSkills.
type SkillList struct {
	LoadedAt string          `json:"loaded_at"`
	Skills   []scanner.Skill `json:"skills"`
	Total    int             `json:"total"`
	User     int             `json:"user"`
	System   int             `json:"system"`
	Skipped  []scanner.Skip  `json:"skipped,omitempty"`
}

// ListSkills scans skills in minimal or full shape, core tier first.
func (s *Service) ListSkills(ctx context.Context, full bool) *SkillList {
	_, span := s.tracer.Start(ctx, "service.list_skills")
	defer span.End()

	scan := s.scanner.Skills(full)
	user, system := scan.Count()
	return &SkillList{
		LoadedAt: bundle.LoadedAt(),
		Skills:   nonNil(scan.Skills),
		Total:    len(scan.Skills),
		User:     user,
		System:   system,
		Skipped:  scan.Skipped,
	}
}

// CheckUpdates asks upstream whether the system files changed.
func (s *Service) CheckUpdates(ctx context.Context) *updater.CheckResult {
	ctx, span := s.tracer.Start(ctx, "service.check_updates")
	defer span.End()

	res := s.updater.Check(ctx)
	span.SetAttributes(attribute.Bool("nexus.update_available", res.UpdateAvailable))
	return res
}

// Sync replaces system files with upstream's copy.
func (s *Service) Sync(ctx context.Context, opts updater.SyncOptions) *updater.SyncResult {
	ctx, span := s.tracer.Start(ctx, "service.sync", trace.WithAttributes(
		attribute.Bool("nexus.dry_run", opts.DryRun),
		attribute.Bool("nexus.force", opts.Force),
	))
	defer span.End()

	res := s.updater.Sync(ctx, opts)
	if res.Error != "" {
		s.logger.Warn("sync failed", "error", res.Error)
	}
	return res
}
