// Package container wires the Nexus services using go.uber.org/dig.
package container

import (
	"fmt"
	"log/slog"

	"go.uber.org/dig"

	"github.com/HendryAvila/nexus/internal/bundle"
	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/stats"
	"github.com/HendryAvila/nexus/internal/telemetry"
	"github.com/HendryAvila/nexus/internal/templates"
	"github.com/HendryAvila/nexus/internal/updater"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	settings config.Settings
	logger   *slog.Logger
	svc      *service.Service
}

func (c *Container) Settings() config.Settings { return c.settings }
func (c *Container) Logger() *slog.Logger      { return c.logger }
func (c *Container) Service() *service.Service { return c.svc }

// New builds and wires every service for the workspace in settings.
// A nil runner means real git, instrumented when telemetry is enabled.
func New(settings config.Settings, logger *slog.Logger, runner updater.Runner) (*Container, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := dig.New()

	providers := []any{
		func() config.Settings { return settings },
		func() *slog.Logger { return logger },
		func() config.Tables { return config.MustTables(config.DefaultTables()) },
		func(s config.Settings, l *slog.Logger) updater.Runner {
			if runner != nil {
				return runner
			}
			return telemetry.WrapRunner(updater.NewExecRunner(s.Workspace, s.Git.RetryMaxElapsed, l))
		},
		newEngine,
		newScanner,
		templates.NewRenderer,
		newLoader,
		newAggregator,
		newService,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, fmt.Errorf("providing dependency: %w", err)
		}
	}

	var result *Container
	err := d.Invoke(func(s config.Settings, l *slog.Logger, svc *service.Service) {
		result = &Container{settings: s, logger: l, svc: svc}
	})
	if err != nil {
		return nil, fmt.Errorf("resolving services: %w", err)
	}
	return result, nil
}

func newEngine(s config.Settings, r updater.Runner, l *slog.Logger) *updater.Engine {
	return updater.New(updater.OptionsFromSettings(s), r, l)
}

func newScanner(s config.Settings, t config.Tables, l *slog.Logger) *scanner.Scanner {
	return scanner.New(s.Workspace, t, l)
}

func newLoader(s config.Settings, t config.Tables, sc *scanner.Scanner, r *templates.Renderer, l *slog.Logger) *bundle.Loader {
	return bundle.NewLoader(s.Workspace, t, sc, r, l)
}

func newAggregator(s config.Settings, t config.Tables) *stats.Aggregator {
	return stats.NewAggregator(s.Workspace, t)
}

func newService(
	s config.Settings,
	sc *scanner.Scanner,
	loader *bundle.Loader,
	agg *stats.Aggregator,
	engine *updater.Engine,
	l *slog.Logger,
) *service.Service {
	return service.New(service.Deps{
		Root:       s.Workspace,
		Scanner:    sc,
		Loader:     loader,
		Aggregator: agg,
		Updater:    engine,
		Logger:     l,
	})
}
