package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/nexus/internal/scanner"
	"github.com/HendryAvila/nexus/internal/service"
	"github.com/HendryAvila/nexus/internal/updater"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"})
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFB74D"})
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"})
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"})
	boldStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(14).Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"})
)

// timeNow is a package-level variable for testing.
var timeNow = time.Now

func newStatusCmd(a *app) *cobra.Command {
	var checkUpdates bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a human-readable workspace summary",
		Long: `Show the workspace state, projects in progress, skills, onboarding
progress, and display hints. Nothing in the workspace is written.

Examples:
  nexus status                  # local summary only
  nexus status --check-updates  # also ask upstream for updates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.svc()
			st := svc.Status(cmd.Context())
			projects := svc.ListProjects(cmd.Context(), false)

			var check *updater.CheckResult
			if checkUpdates {
				check = svc.CheckUpdates(cmd.Context())
			}
			renderStatus(cmd.OutOrStdout(), svc.Root(), st, projects, check)
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkUpdates, "check-updates", false, "ask upstream whether system files changed")
	return cmd
}

func renderStatus(w io.Writer, root string, st *service.StatusResult, projects *service.ProjectList, check *updater.CheckResult) {
	s := st.Stats
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
	}

	fmt.Fprintln(w, boldStyle.Render("Nexus workspace"))
	row("Root", root)
	row("State", accentStyle.Render(string(st.SystemState)))
	row("Projects", fmt.Sprintf("%s total, %s active",
		humanize.Comma(int64(s.TotalProjects)), humanize.Comma(int64(s.ActiveProjects))))
	row("Skills", fmt.Sprintf("%s total (%d user, %d system)",
		humanize.Comma(int64(s.TotalSkills)), s.UserSkills, s.SystemSkills))

	done := 0
	for _, ok := range s.OnboardingCompleted {
		if ok {
			done++
		}
	}
	onboarding := fmt.Sprintf("%d/%d", done, len(s.OnboardingCompleted))
	if s.OnboardingComplete {
		onboarding = passStyle.Render(onboarding + " complete")
	}
	row("Onboarding", onboarding)

	integrations := mutedStyle.Render("none")
	if len(s.ActiveIntegrations) > 0 {
		active := append([]string(nil), s.ActiveIntegrations...)
		sort.Strings(active)
		integrations = strings.Join(active, ", ")
	}
	row("Integrations", integrations)

	if check != nil {
		row("Updates", updateLine(check))
	}

	if active := activeProjects(projects.Projects); len(active) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, boldStyle.Render("In progress"))
		for _, p := range active {
			fmt.Fprintf(w, "  %s %s %s%s\n",
				accentStyle.Render(p.ID),
				p.Name,
				mutedStyle.Render(fmt.Sprintf("%.0f%% (%d/%d)", p.Progress*100, p.TasksCompleted, p.TasksTotal)),
				mutedStyle.Render(updatedSuffix(p.Updated)),
			)
			if p.CurrentTask != "" {
				fmt.Fprintf(w, "    next: %s\n", p.CurrentTask)
			}
		}
	}

	if len(s.DisplayHints) > 0 {
		fmt.Fprintln(w)
		for _, hint := range s.DisplayHints {
			fmt.Fprintf(w, "%s %s\n", warnStyle.Render("!"), hint)
		}
	}
}

func updateLine(c *updater.CheckResult) string {
	switch {
	case c.Error != "":
		return warnStyle.Render("check failed: " + c.Error)
	case c.UpdateAvailable:
		msg := fmt.Sprintf("available, %s changed", humanize.Comma(int64(len(c.ChangedFiles))))
		if c.LocalVersion != "" && c.UpstreamVersion != "" {
			msg = fmt.Sprintf("v%s -> v%s, %s", c.LocalVersion, c.UpstreamVersion, msg)
		}
		return warnStyle.Render(msg) + mutedStyle.Render(" (run: nexus sync --dry-run)")
	default:
		return passStyle.Render("up to date")
	}
}

func activeProjects(projects []scanner.Project) []scanner.Project {
	var active []scanner.Project
	for _, p := range projects {
		if p.Status == scanner.StatusInProgress {
			active = append(active, p)
		}
	}
	return active
}

// updatedSuffix renders a header date as ", updated 3 days ago".
func updatedSuffix(updated string) string {
	if updated == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, updated); err == nil {
			return ", updated " + humanize.RelTime(t, timeNow(), "ago", "from now")
		}
	}
	return ""
}
