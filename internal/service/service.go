// Package service is the single entry point for every Nexus operation.
// MCP tools and CLI commands are thin shells over it.
//
// Every public method returns a result value and never an error: composite
// operations are best effort, and problems are reported inside the result
// so the driving agent can branch on them.
package service

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/HendryAvila/nexus/internal/bundle"
	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/instructions"
	"github.com/HendryAvila/nexus/internal/metadata"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/state"
	"github.com/HendryAvila/nexus/internal/stats"
	"github.com/HendryAvila/nexus/internal/telemetry"
	"github.com/HendryAvila/nexus/internal/updater"
)

const scopeName = "github.com/HendryAvila/nexus/service"

// Service runs Nexus operations against one workspace.
type Service struct {
	root    string
	scanner *scanner.Scanner
	loader  *bundle.Loader
	stats   *stats.Aggregator
	updater *updater.Engine
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Deps are the collaborators a Service needs.
type Deps struct {
	Root       string
	Scanner    *scanner.Scanner
	Loader     *bundle.Loader
	Aggregator *stats.Aggregator
	Updater    *updater.Engine
	Logger     *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		root:    d.Root,
		scanner: d.Scanner,
		loader:  d.Loader,
		stats:   d.Aggregator,
		updater: d.Updater,
		logger:  logger,
		tracer:  telemetry.Tracer(scopeName),
	}
}

// Root returns the workspace root.
func (s *Service) Root() string {
	return s.root
}

// StartupOptions controls Startup.
type StartupOptions struct {
	// IncludeMetadata adds the project, skill, and integration lists.
	IncludeMetadata bool
	// ResumeMode continues an interrupted session.
	ResumeMode bool
	// CheckUpdates asks upstream whether system files changed.
	CheckUpdates bool
}

// DefaultStartupOptions is what a new session uses.
func DefaultStartupOptions() StartupOptions {
	return StartupOptions{IncludeMetadata: true, CheckUpdates: true}
}

// Metadata is the optional listing part of a startup bundle.
type Metadata struct {
	Projects     []scanner.Project     `json:"projects"`
	Skills       []scanner.Skill       `json:"skills"`
	Integrations []scanner.Integration `json:"integrations"`
}

// StartupResult is the session bootstrap bundle.
type StartupResult struct {
	LoadedAt             string                    `json:"loaded_at"`
	Bundle               string                    `json:"bundle"`
	SystemState          state.SystemState         `json:"system_state"`
	Instructions         instructions.Instructions `json:"instructions"`
	MemoryContent        map[string]string         `json:"memory_content"`
	Metadata             *Metadata                 `json:"metadata,omitempty"`
	Stats                stats.Stats               `json:"stats"`
	SmartDefaultsCreated []string                  `json:"smart_defaults_created,omitempty"`
	Warnings             []string                  `json:"warnings,omitempty"`
}

// Startup scans the workspace, writes smart defaults if needed, classifies
// its state, and returns the bundle the agent starts a session with.
// Update-check failures are logged and dropped.
func (s *Service) Startup(ctx context.Context, opts StartupOptions) *StartupResult {
	ctx, span := s.tracer.Start(ctx, "service.startup", trace.WithAttributes(
		attribute.Bool("nexus.resume", opts.ResumeMode),
		attribute.Bool("nexus.check_updates", opts.CheckUpdates),
	))
	defer span.End()

	result := &StartupResult{LoadedAt: bundle.LoadedAt(), Bundle: "startup"}

	created, err := s.loader.EnsureDefaults()
	if err != nil {
		s.logger.Warn("creating smart defaults", "error", err)
		result.Warnings = append(result.Warnings, "smart defaults: "+err.Error())
	}
	result.SmartDefaultsCreated = created

	snap := s.snapshot()

	result.SystemState = state.Classify(snap.stateInputs(opts.ResumeMode))
	span.SetAttributes(attribute.String("nexus.state", string(result.SystemState)))

	var update *updater.CheckResult
	if opts.CheckUpdates && s.updater != nil {
		check := s.updater.Check(ctx)
		if check.Error != "" {
			s.logger.Debug("update check skipped", "error", check.Error)
		} else {
			update = check
		}
	}

	result.Stats = s.stats.Aggregate(snap.statsInputs(update))
	result.Instructions = instructions.Build(result.SystemState, snap.projects.Projects, result.Stats.DisplayHints)
	result.MemoryContent = s.loader.MemoryContent()

	if opts.IncludeMetadata {
		result.Metadata = &Metadata{
			Projects:     nonNil(snap.projects.Projects),
			Skills:       nonNil(snap.skills.Skills),
			Integrations: nonNil(snap.integrations),
		}
	}
	return result
}

// Resume is Startup for a continued session: no update check, metadata
// included.
func (s *Service) Resume(ctx context.Context) *StartupResult {
	return s.Startup(ctx, StartupOptions{IncludeMetadata: true, ResumeMode: true})
}

// StatusResult is a read-only view of the workspace.
type StatusResult struct {
	LoadedAt    string            `json:"loaded_at"`
	SystemState state.SystemState `json:"system_state"`
	Stats       stats.Stats       `json:"stats"`
}

// Status classifies the workspace and aggregates its statistics without
// writing smart defaults or contacting upstream.
func (s *Service) Status(ctx context.Context) *StatusResult {
	_, span := s.tracer.Start(ctx, "service.status")
	defer span.End()

	snap := s.snapshot()
	return &StatusResult{
		LoadedAt:    bundle.LoadedAt(),
		SystemState: state.Classify(snap.stateInputs(false)),
		Stats:       s.stats.Aggregate(snap.statsInputs(nil)),
	}
}

// snapshot is one scan of everything classification and stats read.
type snapshot struct {
	projects      scanner.ProjectScan
	skills        scanner.SkillScan
	integrations  []scanner.Integration
	goalsExist    bool
	goalsTemplate bool
	mapExists     bool
	mapTemplate   bool
}

func (s *Service) snapshot() snapshot {
	var snap snapshot
	snap.goalsExist, snap.goalsTemplate = s.fileState(config.GoalsFile)
	snap.mapExists, snap.mapTemplate = s.fileState(config.WorkspaceMapFile)
	snap.projects = s.scanner.Projects(false)
	snap.skills = s.scanner.Skills(false)
	snap.integrations = s.scanner.Integrations()
	return snap
}

func (snap snapshot) stateInputs(resume bool) state.Inputs {
	return state.Inputs{
		ResumeMode:      resume,
		GoalsExist:      snap.goalsExist,
		GoalsTemplate:   snap.goalsTemplate,
		ProjectStatuses: snap.projects.Statuses(),
	}
}

func (snap snapshot) statsInputs(update *updater.CheckResult) stats.Inputs {
	return stats.Inputs{
		Projects:             snap.projects,
		Skills:               snap.skills,
		Integrations:         snap.integrations,
		GoalsExist:           snap.goalsExist,
		GoalsTemplate:        snap.goalsTemplate,
		WorkspaceMapExists:   snap.mapExists,
		WorkspaceMapTemplate: snap.mapTemplate,
		Update:               update,
	}
}

// fileState reports whether rel exists and whether it is a template.
func (s *Service) fileState(rel string) (exists, template bool) {
	path := config.Path(s.root, rel)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("checking file", "path", rel, "error", err)
		}
		return false, false
	}
	return true, metadata.IsTemplate(path)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
