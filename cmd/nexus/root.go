package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HendryAvila/nexus/internal/config"
	"github.com/HendryAvila/nexus/internal/container"
	"github.com/HendryAvila/nexus/internal/logging"
	"github.com/HendryAvila/nexus/internal/server"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/telemetry"
	"github.com/HendryAvila/nexus/internal/updater"
)

// errReported means the result was already printed and only the exit
// code is left to set.
var errReported = errors.New("operation failed")

// app carries per-invocation state shared by all subcommands.
type app struct {
	configFile string
	v          *viper.Viper
	c          *container.Container

	// runner replaces real git; only tests set it.
	runner updater.Runner
}

func (a *app) svc() *service.Service { return a.c.Service() }

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nexus",
		Short: "Nexus - session bootstrap for your AI workspace",
		Long: `Nexus loads a workspace's memory, projects, and skills in one call and
tells the AI what to do next. It also keeps the system files in sync with
the upstream template.

Run "nexus serve" to start the MCP server over stdio. Every other command
prints the same JSON the matching MCP tool returns.`,
		Version:           server.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			telemetry.Shutdown(cmd.Context())
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "settings file (default is <workspace>/.nexus.yaml)")
	flags.String("workspace", "", "workspace root (default: discovered from the working directory)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(a),
		newStartupCmd(a),
		newResumeCmd(a),
		newProjectCmd(a),
		newSkillCmd(a),
		newMetadataCmd(a),
		newProjectsCmd(a),
		newSkillsCmd(a),
		newCheckUpdatesCmd(a),
		newSyncCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads settings, starts telemetry, and resolves the services.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	a.v = config.NewViper(a.configFile)
	flags := cmd.Root().PersistentFlags()
	_ = a.v.BindPFlag("workspace", flags.Lookup("workspace"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	settings, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	logger := logging.New(settings.Log)

	if err := telemetry.Init(cmd.Context(), "nexus", server.Version); err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}

	c, err := container.New(settings, logger, a.runner)
	if err != nil {
		return fmt.Errorf("wiring services: %w", err)
	}
	a.c = c
	logger.Debug("workspace resolved", "root", settings.Workspace)
	return nil
}

// printJSON writes v as indented JSON. A non-empty errMsg still prints the
// result but makes the command exit non-zero.
func printJSON(w io.Writer, v any, errMsg string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if errMsg != "" {
		return errReported
	}
	return nil
}
