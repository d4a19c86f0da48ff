package updater

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/HendryAvila/nexus/internal/config"
)

// SyncOptions controls a sync run.
type SyncOptions struct {
	// DryRun reports what would change without writing anything.
	DryRun bool
	// Force proceeds even when the working copy has uncommitted changes.
	Force bool
}

// SyncResult is the outcome of a sync.
type SyncResult struct {
	Success            bool     `json:"success"`
	DryRun             bool     `json:"dry_run"`
	Message            string   `json:"message,omitempty"`
	LocalVersion       string   `json:"local_version,omitempty"`
	UpstreamVersion    string   `json:"upstream_version,omitempty"`
	NewVersion         string   `json:"new_version,omitempty"`
	FilesToUpdate      []string `json:"files_to_update"`
	FilesUpdated       int      `json:"files_updated"`
	FilesRemoved       []string `json:"files_removed,omitempty"`
	BackupPath         string   `json:"backup_path,omitempty"`
	PathsSynced        []string `json:"paths_synced,omitempty"`
	PathsSkipped       []string `json:"paths_skipped,omitempty"`
	UncommittedChanges []string `json:"uncommitted_changes,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Sync replaces the sync-managed paths with upstream's copy. Order:
// preflight, dirty check, remote, fetch, diff, backup, per-path checkout,
// removal of files upstream deleted. A dry run stops after the diff; a
// dirty working copy without Force stops before anything is fetched or
// written. Nothing is committed: the result is staged in the index.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) *SyncResult {
	result := &SyncResult{
		DryRun:        opts.DryRun,
		LocalVersion:  e.localVersion(),
		FilesToUpdate: []string{},
	}

	if err := e.preflight(ctx); err != nil {
		result.Error = err.Error()
		return result
	}

	if !opts.Force {
		dirty, err := e.uncommittedChanges(ctx)
		if err != nil {
			result.Error = fmt.Sprintf("checking working copy: %v", err)
			return result
		}
		if len(dirty) > 0 {
			result.Error = fmt.Sprintf("%v: commit or stash them, or sync with force", ErrDirtyWorkTree)
			result.UncommittedChanges = dirty
			return result
		}
	}

	if err := e.ensureRemote(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	if _, err := e.runner.Run(ctx, e.opts.FetchTimeout, "fetch", e.opts.Remote); err != nil {
		result.Error = fmt.Sprintf("fetching upstream: %v", err)
		return result
	}
	result.UpstreamVersion = e.upstreamVersion(ctx)

	// Compare the working tree, not HEAD, so forced syncs see local edits.
	args := append([]string{"diff", "--name-only", e.upstreamRef(), "--"}, e.opts.Paths...)
	out, err := e.runner.Run(ctx, e.opts.Timeout, args...)
	if err != nil {
		result.Error = fmt.Sprintf("listing changed files: %v", err)
		return result
	}
	changed := splitLines(out)
	if len(changed) == 0 {
		result.Success = true
		result.Message = "Already up to date"
		return result
	}
	result.FilesToUpdate = changed

	if opts.DryRun {
		result.Success = true
		result.Message = fmt.Sprintf("%d file(s) would be updated", len(changed))
		return result
	}

	// Tracked files that upstream no longer has show up as added.
	args = append([]string{"diff", "--name-only", "--diff-filter=A", e.upstreamRef(), "--"}, e.opts.Paths...)
	out, err = e.runner.Run(ctx, e.opts.Timeout, args...)
	if err != nil {
		result.Error = fmt.Sprintf("listing files deleted upstream: %v", err)
		return result
	}
	removed := splitLines(out)

	backup, err := e.backup(changed)
	if err != nil {
		result.Error = fmt.Sprintf("backing up files: %v", err)
		return result
	}
	result.BackupPath = backup

	for _, path := range e.opts.Paths {
		if _, err := e.runner.Run(ctx, e.opts.Timeout, "checkout", e.upstreamRef(), "--", path); err != nil {
			// A path absent upstream is not fatal for the others.
			e.logger.Warn("sync: skipping path", "path", path, "error", err)
			result.PathsSkipped = append(result.PathsSkipped, path)
			continue
		}
		result.PathsSynced = append(result.PathsSynced, path)
	}

	if len(result.PathsSynced) == 0 {
		result.Error = "no sync paths could be checked out from upstream"
		return result
	}

	if len(removed) > 0 {
		args := append([]string{"rm", "-q", "-f", "--ignore-unmatch", "--"}, removed...)
		if _, err := e.runner.Run(ctx, e.opts.Timeout, args...); err != nil {
			result.Error = fmt.Sprintf("removing files deleted upstream: %v", err)
			return result
		}
		result.FilesRemoved = removed
	}

	result.Success = true
	result.FilesUpdated = len(changed)
	result.NewVersion = e.localVersion()
	result.Message = fmt.Sprintf("Updated %d file(s)", len(changed))
	e.logger.Info("sync complete", "files", len(changed), "removed", len(removed), "backup", result.BackupPath)
	return result
}

// uncommittedChanges lists paths reported by git status --porcelain,
// ignoring our own backup directory and sync-managed files that already
// match upstream in both the index and the working copy, as a previous
// sync leaves them.
func (e *Engine) uncommittedChanges(ctx context.Context) ([]string, error) {
	out, err := e.runner.Run(ctx, e.opts.Timeout, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	managed := make(map[string]bool)
	for _, line := range splitLines(out) {
		// "XY path": the status code may have lost its leading space.
		path := line
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			path = strings.TrimSpace(line[i+1:])
		}
		if strings.HasPrefix(path, config.BackupDir) {
			continue
		}
		paths = append(paths, path)
		if !strings.HasPrefix(line, "??") && e.managed(path) {
			managed[path] = true
		}
	}
	if len(managed) == 0 {
		return paths, nil
	}

	pending, err := e.pendingFiles(ctx)
	if err != nil {
		// No upstream ref to compare with yet; every change counts.
		e.logger.Debug("comparing local changes with upstream", "error", err)
		return paths, nil
	}
	kept := paths[:0]
	for _, path := range paths {
		if managed[path] && !pending[path] {
			continue
		}
		kept = append(kept, path)
	}
	return kept, nil
}

// managed reports whether path lies under one of the sync paths.
func (e *Engine) managed(path string) bool {
	for _, p := range e.opts.Paths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// pendingFiles returns the sync-managed files whose working copy or index
// entry differs from the last fetched upstream ref.
func (e *Engine) pendingFiles(ctx context.Context) (map[string]bool, error) {
	pending := make(map[string]bool)
	for _, cached := range []bool{false, true} {
		args := []string{"diff", "--name-only"}
		if cached {
			args = append(args, "--cached")
		}
		args = append(append(args, e.upstreamRef(), "--"), e.opts.Paths...)
		out, err := e.runner.Run(ctx, e.opts.Timeout, args...)
		if err != nil {
			return nil, err
		}
		for _, path := range splitLines(out) {
			pending[path] = true
		}
	}
	return pending, nil
}

// backup copies every changed file that exists locally into a fresh
// timestamped directory under the backup root and returns its
// workspace-relative path. No directory is created when there is nothing
// to back up.
func (e *Engine) backup(changed []string) (string, error) {
	var existing []string
	for _, rel := range changed {
		info, err := os.Stat(config.Path(e.opts.Root, rel))
		if err == nil && info.Mode().IsRegular() {
			existing = append(existing, rel)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	dir, err := e.backupDir()
	if err != nil {
		return "", err
	}

	for _, rel := range existing {
		if err := copyFile(config.Path(e.opts.Root, rel), filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return "", err
		}
	}
	return config.Rel(e.opts.Root, dir), nil
}

// backupDir creates a directory named by the current timestamp. If one
// already exists for this second, a short random suffix is added.
func (e *Engine) backupDir() (string, error) {
	base := config.Path(e.opts.Root, config.BackupDir)
	name := timeNow().Format("2006-01-02_150405")
	dir := filepath.Join(base, name)

	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("creating backup root: %w", err)
	}
	err := os.Mkdir(dir, 0o755)
	if errors.Is(err, fs.ErrExist) {
		dir = filepath.Join(base, name+"-"+uuid.NewString()[:8])
		err = os.Mkdir(dir, 0o755)
	}
	if err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
