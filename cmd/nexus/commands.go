package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/nexus/internal/bundle"
	"github.com/HendryAvila/nexus/internal/server"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/updater"
)

func newStartupCmd(a *app) *cobra.Command {
	var noMetadata, noUpdateCheck bool
	cmd := &cobra.Command{
		Use:   "startup",
		Short: "Print the session startup bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := service.DefaultStartupOptions()
			opts.IncludeMetadata = !noMetadata
			opts.CheckUpdates = !noUpdateCheck
			return printJSON(cmd.OutOrStdout(), a.svc().Startup(cmd.Context(), opts), "")
		},
	}
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit project, skill, and integration lists")
	cmd.Flags().BoolVar(&noUpdateCheck, "no-update-check", false, "skip the upstream update check")
	return cmd
}

func newResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Print the startup bundle in resume mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc().Resume(cmd.Context()), "")
		},
	}
}

func newProjectCmd(a *app) *cobra.Command {
	var part string
	cmd := &cobra.Command{
		Use:   "project <id>",
		Short: "Load one project by id, folder name, or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.svc().LoadProject(cmd.Context(), args[0], part)
			return printJSON(cmd.OutOrStdout(), b, b.Error)
		},
	}
	cmd.Flags().StringVar(&part, "part", string(bundle.PartAll), fmt.Sprintf("part to index %v", bundle.Parts()))
	return cmd
}

func newSkillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "skill <name>",
		Short: "Load a skill with its declared references and scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.svc().LoadSkill(cmd.Context(), args[0])
			return printJSON(cmd.OutOrStdout(), b, b.Error)
		},
	}
}

func newMetadataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print every project, skill, and integration in full",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc().LoadMetadata(cmd.Context()), "")
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc().ListProjects(cmd.Context(), full), "")
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include every header field")
	return cmd
}

func newSkillsCmd(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.svc().ListSkills(cmd.Context(), full), "")
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include declared references and scripts")
	return cmd
}

func newCheckUpdatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates",
		Short: "Ask upstream whether system files changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.svc().CheckUpdates(cmd.Context())
			return printJSON(cmd.OutOrStdout(), res, res.Error)
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	var opts updater.SyncOptions
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace system files with the upstream copy",
		Long: `Replace 00-system/, CLAUDE.md, and README.md with the upstream template.

Changed files are backed up to .nexus-backups/<timestamp>/ first. User
memory, projects, and skills are never touched.

Examples:
  nexus sync --dry-run   # show what would change
  nexus sync             # apply (fails on uncommitted changes)
  nexus sync --force     # apply even with uncommitted changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.svc().Sync(cmd.Context(), opts)
			return printJSON(cmd.OutOrStdout(), res, res.Error)
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "only report what would change")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "sync even with uncommitted changes")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nexus v%s\n", server.Version)
		},
	}
}
