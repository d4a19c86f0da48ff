package updater

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/nexus/internal/config"
)

func init() {
	// Freeze time for deterministic backup names.
	timeNow = func() time.Time {
		return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	}
}

// fakeRunner answers git invocations from a script keyed by the joined
// argument list. Unscripted commands fail like a non-zero exit.
type fakeRunner struct {
	responses map[string]fakeResponse
	calls     []string
}

type fakeResponse struct {
	out string
	err error
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if r, ok := f.responses[key]; ok {
		return r.out, r.err
	}
	return "", &CommandError{Args: args, Err: errors.New("exit status 128")}
}

func (f *fakeRunner) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func ok(out string) fakeResponse { return fakeResponse{out: out} }

func failed(msg string) fakeResponse {
	return fakeResponse{err: &CommandError{Err: errors.New(msg)}}
}

// happyRunner scripts an upstream that is ahead by two files.
func happyRunner() *fakeRunner {
	paths := strings.Join(config.SyncPaths, " ")
	return &fakeRunner{responses: map[string]fakeResponse{
		"rev-parse --is-inside-work-tree":                            ok("true"),
		"remote get-url upstream":                                    ok(config.DefaultUpstreamURL),
		"fetch --no-tags upstream main":                              ok(""),
		"fetch upstream":                                             ok(""),
		"rev-parse upstream/main:00-system":                          ok("bbb"),
		"write-tree --prefix=00-system/":                             ok("aaa"),
		"show upstream/main:00-system/VERSION":                       ok("v1.2.0\n"),
		"diff --name-only --cached upstream/main -- " + paths:        ok("00-system/system-map.md\nCLAUDE.md"),
		"diff --name-only upstream/main -- " + paths:                 ok("00-system/system-map.md\nCLAUDE.md"),
		"diff --name-only --diff-filter=A upstream/main -- " + paths: ok(""),
		"status --porcelain":                                         ok(""),
		"checkout upstream/main -- 00-system":                        ok(""),
		"checkout upstream/main -- CLAUDE.md":                        ok(""),
		"checkout upstream/main -- README.md":                        failed("pathspec 'README.md' did not match"),
	}}
}

func writeWorkspaceFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := config.Path(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newEngine(root string, r Runner) *Engine {
	return New(Options{Root: root}, r, nil)
}

// --- Check ---

func TestCheck_UpdateAvailable(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, config.VersionFile, "1.1.0\n")
	r := happyRunner()

	res := newEngine(root, r).Check(context.Background())

	assert.Empty(t, res.Error)
	assert.True(t, res.Checked)
	assert.True(t, res.UpdateAvailable)
	assert.Equal(t, "1.1.0", res.LocalVersion)
	assert.Equal(t, "1.2.0", res.UpstreamVersion)
	assert.True(t, res.VersionBehind)
	assert.Equal(t, []string{"00-system/system-map.md", "CLAUDE.md"}, res.ChangedFiles)
	assert.Equal(t, "2026-02-20T12:00:00Z", res.CheckedAt)
	assert.False(t, r.called("fetch upstream"), "check must only fetch the branch refs")
}

func TestCheck_UpToDate(t *testing.T) {
	r := happyRunner()
	r.responses["write-tree --prefix=00-system/"] = ok("bbb")

	res := newEngine(t.TempDir(), r).Check(context.Background())

	assert.True(t, res.Checked)
	assert.False(t, res.UpdateAvailable)
	assert.Empty(t, res.ChangedFiles)
}

func TestCheck_NoLocalSystemTree(t *testing.T) {
	r := happyRunner()
	delete(r.responses, "write-tree --prefix=00-system/")

	res := newEngine(t.TempDir(), r).Check(context.Background())

	assert.True(t, res.UpdateAvailable)
}

func TestCheck_NotRepository(t *testing.T) {
	r := &fakeRunner{}
	res := newEngine(t.TempDir(), r).Check(context.Background())

	assert.False(t, res.Checked)
	assert.Equal(t, ErrNotRepository.Error(), res.Error)
	assert.False(t, r.called("fetch"))
}

func TestCheck_FetchFailure(t *testing.T) {
	r := happyRunner()
	r.responses["fetch --no-tags upstream main"] = failed("could not resolve host")

	res := newEngine(t.TempDir(), r).Check(context.Background())

	assert.False(t, res.Checked)
	assert.False(t, res.UpdateAvailable)
	assert.Contains(t, res.Error, "fetching upstream")
}

func TestCheck_AddsMissingRemote(t *testing.T) {
	r := happyRunner()
	delete(r.responses, "remote get-url upstream")
	addCmd := "remote add upstream " + config.DefaultUpstreamURL
	r.responses[addCmd] = ok("")

	res := newEngine(t.TempDir(), r).Check(context.Background())

	assert.Empty(t, res.Error)
	assert.True(t, r.called(addCmd))
}

// --- Sync ---

func TestSync_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "CLAUDE.md", "local")
	r := happyRunner()

	e := newEngine(root, r)

	first := e.Sync(context.Background(), SyncOptions{DryRun: true})
	second := e.Sync(context.Background(), SyncOptions{DryRun: true})

	for _, res := range []*SyncResult{first, second} {
		assert.True(t, res.Success)
		assert.True(t, res.DryRun)
		assert.Zero(t, res.FilesUpdated)
		assert.Empty(t, res.BackupPath)
	}
	assert.Equal(t, []string{"00-system/system-map.md", "CLAUDE.md"}, first.FilesToUpdate)
	assert.Equal(t, first.FilesToUpdate, second.FilesToUpdate)
	assert.False(t, r.called("checkout"))
	assert.False(t, r.called("rm"))

	_, err := os.Stat(config.Path(root, config.BackupDir))
	assert.True(t, os.IsNotExist(err), "dry run must not create a backup directory")
}

func TestSync_DirtyWithoutForceFailsEarly(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "CLAUDE.md", "local")
	r := happyRunner()
	r.responses["status --porcelain"] = ok("M CLAUDE.md\n?? notes.md\n?? .nexus-backups/")

	res := newEngine(root, r).Sync(context.Background(), SyncOptions{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, ErrDirtyWorkTree.Error())
	assert.Equal(t, []string{"CLAUDE.md", "notes.md"}, res.UncommittedChanges)
	assert.False(t, r.called("fetch"))
	assert.False(t, r.called("checkout"))

	_, err := os.Stat(config.Path(root, config.BackupDir))
	assert.True(t, os.IsNotExist(err))
}

func TestSync_ForceSkipsDirtyCheck(t *testing.T) {
	r := happyRunner()
	r.responses["status --porcelain"] = ok("M CLAUDE.md")

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{Force: true})

	assert.True(t, res.Success)
	assert.False(t, r.called("status"))
}

func TestSync_BacksUpAndChecksOutPerPath(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, config.VersionFile, "1.1.0")
	writeWorkspaceFile(t, root, "00-system/system-map.md", "old map")
	writeWorkspaceFile(t, root, "CLAUDE.md", "old agent file")
	r := happyRunner()

	res := newEngine(root, r).Sync(context.Background(), SyncOptions{})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, res.FilesUpdated)
	assert.Equal(t, []string{"00-system", "CLAUDE.md"}, res.PathsSynced)
	assert.Equal(t, []string{"README.md"}, res.PathsSkipped)
	assert.Equal(t, ".nexus-backups/2026-02-20_120000", res.BackupPath)
	assert.Equal(t, "1.1.0", res.LocalVersion)
	assert.Equal(t, "1.2.0", res.UpstreamVersion)

	backed, err := os.ReadFile(filepath.Join(root, ".nexus-backups", "2026-02-20_120000", "00-system", "system-map.md"))
	require.NoError(t, err)
	assert.Equal(t, "old map", string(backed))

	backed, err = os.ReadFile(filepath.Join(root, ".nexus-backups", "2026-02-20_120000", "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "old agent file", string(backed))
}

func TestSync_AllCheckoutsFail(t *testing.T) {
	r := happyRunner()
	for _, p := range config.SyncPaths {
		r.responses["checkout upstream/main -- "+p] = failed("boom")
	}

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Len(t, res.PathsSkipped, 3)
}

func TestSync_AlreadyUpToDate(t *testing.T) {
	r := happyRunner()
	r.responses["diff --name-only upstream/main -- "+strings.Join(config.SyncPaths, " ")] = ok("")

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{})

	assert.True(t, res.Success)
	assert.Equal(t, "Already up to date", res.Message)
	assert.Empty(t, res.FilesToUpdate)
	assert.False(t, r.called("checkout"))
}

func TestSync_RemovesFilesDeletedUpstream(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "00-system/old.md", "retired")
	paths := strings.Join(config.SyncPaths, " ")
	r := happyRunner()
	r.responses["diff --name-only upstream/main -- "+paths] = ok("00-system/old.md")
	r.responses["diff --name-only --diff-filter=A upstream/main -- "+paths] = ok("00-system/old.md")
	r.responses["rm -q -f --ignore-unmatch -- 00-system/old.md"] = ok("")

	res := newEngine(root, r).Sync(context.Background(), SyncOptions{})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"00-system/old.md"}, res.FilesRemoved)
	assert.Equal(t, 1, res.FilesUpdated)
	assert.True(t, r.called("rm -q -f --ignore-unmatch -- 00-system/old.md"))

	backed, err := os.ReadFile(filepath.Join(root, res.BackupPath, "00-system", "old.md"))
	require.NoError(t, err)
	assert.Equal(t, "retired", string(backed))
}

func TestSync_RemoveFailureIsReported(t *testing.T) {
	paths := strings.Join(config.SyncPaths, " ")
	r := happyRunner()
	r.responses["diff --name-only --diff-filter=A upstream/main -- "+paths] = ok("00-system/old.md")

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "removing files deleted upstream")
	assert.Empty(t, res.FilesRemoved)
}

func TestSync_StagedChangesMatchingUpstreamAreNotDirty(t *testing.T) {
	paths := strings.Join(config.SyncPaths, " ")
	r := happyRunner()
	r.responses["status --porcelain"] = ok("M  00-system/a.md\nD  00-system/old.md\n?? .nexus-backups/")
	r.responses["diff --name-only --cached upstream/main -- "+paths] = ok("")
	r.responses["diff --name-only upstream/main -- "+paths] = ok("")

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{})

	assert.True(t, res.Success, res.Error)
	assert.Empty(t, res.UncommittedChanges)
	assert.Equal(t, "Already up to date", res.Message)
}

func TestSync_StagedChangesStillDifferentAreDirty(t *testing.T) {
	paths := strings.Join(config.SyncPaths, " ")
	r := happyRunner()
	r.responses["status --porcelain"] = ok("MM 00-system/a.md\nM  00-system/b.md\n?? 00-system/mine.md")
	r.responses["diff --name-only --cached upstream/main -- "+paths] = ok("")
	r.responses["diff --name-only upstream/main -- "+paths] = ok("00-system/a.md")

	res := newEngine(t.TempDir(), r).Sync(context.Background(), SyncOptions{})

	assert.False(t, res.Success)
	assert.Equal(t, []string{"00-system/a.md", "00-system/mine.md"}, res.UncommittedChanges)
	assert.False(t, r.called("fetch"))
}

func TestSync_NotRepository(t *testing.T) {
	res := newEngine(t.TempDir(), &fakeRunner{}).Sync(context.Background(), SyncOptions{})

	assert.False(t, res.Success)
	assert.Equal(t, ErrNotRepository.Error(), res.Error)
}

func TestBackupDir_Collision(t *testing.T) {
	root := t.TempDir()
	e := newEngine(root, &fakeRunner{})

	first, err := e.backupDir()
	require.NoError(t, err)
	second, err := e.backupDir()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(second), "2026-02-20_120000-"))
}

func TestBackup_NothingLocal(t *testing.T) {
	root := t.TempDir()
	path, err := newEngine(root, &fakeRunner{}).backup([]string{"00-system/new.md"})

	require.NoError(t, err)
	assert.Empty(t, path)
}

// --- Runner ---

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"dns", &CommandError{Output: "fatal: Could not resolve host: github.com"}, true},
		{"hangup", &CommandError{Output: "fatal: the remote end hung up unexpectedly"}, true},
		{"timeout is permanent", &CommandError{Output: "connection timed out", TimedOut: true}, false},
		{"bad ref", &CommandError{Output: "fatal: invalid object name"}, false},
		{"plain error", errors.New("could not resolve host"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Args: []string{"fetch", "upstream"}, Output: "denied", Err: errors.New("exit status 1")}
	assert.Equal(t, "git fetch upstream: exit status 1: denied", err.Error())

	timeout := &CommandError{Args: []string{"fetch"}, TimedOut: true, Err: errors.New("killed")}
	assert.Equal(t, "git fetch: timed out", timeout.Error())
}

func TestExecRunner_RealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := NewExecRunner(t.TempDir(), 0, nil)

	out, err := r.Run(context.Background(), 10*time.Second, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "git version")

	_, err = r.Run(context.Background(), 10*time.Second, "definitely-not-a-git-command")
	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.False(t, ce.TimedOut)
}

// --- Real git ---

// git runs a setup command in dir with a fixed identity.
func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	full := append([]string{"-C", dir,
		"-c", "user.name=Nexus Test", "-c", "user.email=test@example.com",
		"-c", "commit.gpgsign=false"}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestSyncRoundTrip_RealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	upstream := t.TempDir()
	git(t, upstream, "init", "-q")
	git(t, upstream, "symbolic-ref", "HEAD", "refs/heads/main")
	writeWorkspaceFile(t, upstream, "00-system/a.md", "a v1\n")
	writeWorkspaceFile(t, upstream, "00-system/old.md", "old\n")
	writeWorkspaceFile(t, upstream, config.VersionFile, "1.0.0\n")
	git(t, upstream, "add", "-A")
	git(t, upstream, "commit", "-q", "-m", "v1")

	root := filepath.Join(t.TempDir(), "workspace")
	git(t, filepath.Dir(root), "clone", "-q", upstream, root)

	writeWorkspaceFile(t, upstream, "00-system/a.md", "a v2\n")
	writeWorkspaceFile(t, upstream, config.VersionFile, "1.1.0\n")
	require.NoError(t, os.Remove(filepath.Join(upstream, "00-system", "old.md")))
	git(t, upstream, "add", "-A")
	git(t, upstream, "commit", "-q", "-m", "v2")

	e := New(Options{Root: root, URL: upstream}, NewExecRunner(root, 0, nil), nil)
	ctx := context.Background()

	before := e.Check(ctx)
	require.Empty(t, before.Error)
	assert.True(t, before.UpdateAvailable)
	assert.ElementsMatch(t, []string{"00-system/VERSION", "00-system/a.md", "00-system/old.md"}, before.ChangedFiles)
	assert.True(t, before.VersionBehind)

	first := e.Sync(ctx, SyncOptions{})
	require.True(t, first.Success, first.Error)
	assert.Equal(t, 3, first.FilesUpdated)
	assert.Equal(t, []string{"00-system/old.md"}, first.FilesRemoved)
	assert.Equal(t, "1.1.0", first.NewVersion)

	content, err := os.ReadFile(filepath.Join(root, "00-system", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "a v2\n", string(content))
	_, err = os.Stat(filepath.Join(root, "00-system", "old.md"))
	assert.True(t, os.IsNotExist(err), "file deleted upstream must be removed")

	after := e.Check(ctx)
	require.Empty(t, after.Error)
	assert.False(t, after.UpdateAvailable, "changed after sync: %v", after.ChangedFiles)
	assert.False(t, after.VersionBehind)

	// The staged result of the first sync must not count as local edits.
	for i := 0; i < 2; i++ {
		again := e.Sync(ctx, SyncOptions{})
		require.True(t, again.Success, again.Error)
		assert.Equal(t, "Already up to date", again.Message)
		assert.Empty(t, again.FilesToUpdate)
		assert.Empty(t, again.BackupPath)
	}

	backups, err := os.ReadDir(filepath.Join(root, config.BackupDir))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

// --- normalizeVersion ---

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3\n", "1.2.3"},
		{"  v0.1.0 ", "0.1.0"},
		{"", ""},
		{"v", ""},
		{"vv1.0.0", "v1.0.0"}, // only strips one leading v
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeVersion(tt.input), "normalizeVersion(%q)", tt.input)
	}
}

// --- versionBehind ---

func TestVersionBehind(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		upstream string
		want     bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"newer major", "0.2.0", "1.0.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older version", "0.3.0", "0.2.0", false},
		{"empty local", "", "0.2.0", false},
		{"empty upstream", "0.2.0", "", false},
		{"dev local", "dev", "0.2.0", false},
		{"two part version", "0.2", "0.3.0", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"prefixed and padded", " v1.0.0\n", "v1.0.1", true},
		{"release after prerelease", "1.0.0-beta", "1.0.0", true},
		{"garbage upstream", "1.0.0", "latest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, versionBehind(tt.local, tt.upstream))
		})
	}
}

func TestCanonicalVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.2", "v1.2.0"},
		{"v1.2.3\n", "v1.2.3"},
		{"1.2.3+build.7", "v1.2.3"},
		{"rc1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalVersion(tt.input), "canonicalVersion(%q)", tt.input)
	}
}
