// Package updater keeps the system-owned part of a workspace in step with
// an upstream git repository. It can check whether upstream has changed
// and replace the system paths with upstream's copy, backing up local
// files first.
//
// Design decisions:
//   - All git access goes through the Runner interface, so tests script it
//   - Check never returns an error to the caller: failures land in the result
//   - Sync is path-scoped: only SyncPaths are ever checked out
//   - Nothing runs in the background; every call is synchronous
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/HendryAvila/nexus/internal/config"
)

var (
	// ErrNotRepository indicates the workspace is not a git working copy.
	ErrNotRepository = errors.New("workspace is not a git repository")
	// ErrDirtyWorkTree indicates uncommitted changes block a sync.
	ErrDirtyWorkTree = errors.New("uncommitted changes in workspace")
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Options configures an Engine.
type Options struct {
	Root         string
	URL          string
	Remote       string
	Branch       string
	Paths        []string
	Timeout      time.Duration
	FetchTimeout time.Duration
}

// OptionsFromSettings builds Options from resolved settings.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		Root:         s.Workspace,
		URL:          s.Upstream.URL,
		Remote:       s.Upstream.Remote,
		Branch:       s.Upstream.Branch,
		Paths:        append([]string(nil), config.SyncPaths...),
		Timeout:      s.Git.Timeout,
		FetchTimeout: s.Git.FetchTimeout,
	}
}

// Engine runs update checks and syncs for one workspace.
type Engine struct {
	opts   Options
	runner Runner
	logger *slog.Logger
}

// New creates an Engine. Zero-valued options fall back to defaults.
func New(opts Options, runner Runner, logger *slog.Logger) *Engine {
	if opts.URL == "" {
		opts.URL = config.DefaultUpstreamURL
	}
	if opts.Remote == "" {
		opts.Remote = "upstream"
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if len(opts.Paths) == 0 {
		opts.Paths = append([]string(nil), config.SyncPaths...)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{opts: opts, runner: runner, logger: logger}
}

// CheckResult is the outcome of an update check.
type CheckResult struct {
	// Checked is true when upstream was actually reached.
	Checked bool `json:"checked"`
	// UpdateAvailable is true when the upstream system tree differs.
	UpdateAvailable bool `json:"update_available"`
	// LocalVersion is the content of the local version file.
	LocalVersion string `json:"local_version,omitempty"`
	// UpstreamVersion is the version file on the upstream branch.
	UpstreamVersion string `json:"upstream_version,omitempty"`
	// VersionBehind is true when UpstreamVersion > LocalVersion.
	VersionBehind bool `json:"version_behind"`
	// ChangedFiles lists sync-managed files that differ from upstream.
	ChangedFiles []string `json:"changed_files,omitempty"`
	CheckedAt    string   `json:"checked_at"`
	Error        string   `json:"error,omitempty"`
}

// Check fetches upstream refs and compares the system tree in the index
// with upstream's. It never returns an error; failures are reported in the
// result.
func (e *Engine) Check(ctx context.Context) *CheckResult {
	result := &CheckResult{
		LocalVersion: e.localVersion(),
		CheckedAt:    timeNow().UTC().Format(time.RFC3339),
	}

	if err := e.preflight(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := e.ensureRemote(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	if _, err := e.runner.Run(ctx, e.opts.FetchTimeout, "fetch", "--no-tags", e.opts.Remote, e.opts.Branch); err != nil {
		result.Error = fmt.Sprintf("fetching upstream: %v", err)
		return result
	}
	result.Checked = true

	upstreamTree, err := e.runner.Run(ctx, e.opts.Timeout, "rev-parse", e.upstreamRef()+":"+config.SystemDir)
	if err != nil {
		result.Error = fmt.Sprintf("reading upstream system tree: %v", err)
		return result
	}
	// Hash the index rather than HEAD: a sync stages upstream's files
	// without committing them. No system tree in the index is always behind.
	localTree, err := e.runner.Run(ctx, e.opts.Timeout, "write-tree", "--prefix="+config.SystemDir+"/")
	if err != nil {
		localTree = ""
	}

	result.UpstreamVersion = e.upstreamVersion(ctx)
	result.VersionBehind = versionBehind(result.LocalVersion, result.UpstreamVersion)

	if localTree == upstreamTree {
		return result
	}
	result.UpdateAvailable = true

	args := append([]string{"diff", "--name-only", "--cached", e.upstreamRef(), "--"}, e.opts.Paths...)
	if out, err := e.runner.Run(ctx, e.opts.Timeout, args...); err == nil {
		result.ChangedFiles = splitLines(out)
	} else {
		e.logger.Debug("listing changed files", "error", err)
	}
	return result
}

func (e *Engine) upstreamRef() string {
	return e.opts.Remote + "/" + e.opts.Branch
}

// preflight verifies the workspace is a git working copy.
func (e *Engine) preflight(ctx context.Context) error {
	out, err := e.runner.Run(ctx, e.opts.Timeout, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return ErrNotRepository
	}
	return nil
}

// ensureRemote adds the upstream remote when it is missing. An existing
// remote is left alone even if its URL differs from the configured one.
func (e *Engine) ensureRemote(ctx context.Context) error {
	if url, err := e.runner.Run(ctx, e.opts.Timeout, "remote", "get-url", e.opts.Remote); err == nil {
		if url != e.opts.URL {
			e.logger.Debug("upstream remote URL differs from settings", "remote", url, "configured", e.opts.URL)
		}
		return nil
	}
	if _, err := e.runner.Run(ctx, e.opts.Timeout, "remote", "add", e.opts.Remote, e.opts.URL); err != nil {
		return fmt.Errorf("adding %s remote: %w", e.opts.Remote, err)
	}
	e.logger.Info("added upstream remote", "remote", e.opts.Remote, "url", e.opts.URL)
	return nil
}

func (e *Engine) localVersion() string {
	data, err := os.ReadFile(config.Path(e.opts.Root, config.VersionFile))
	if err != nil {
		return ""
	}
	return normalizeVersion(string(data))
}

func (e *Engine) upstreamVersion(ctx context.Context) string {
	out, err := e.runner.Run(ctx, e.opts.Timeout, "show", e.upstreamRef()+":"+config.VersionFile)
	if err != nil {
		return ""
	}
	return normalizeVersion(out)
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
