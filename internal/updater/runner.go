package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Runner runs one git subcommand in the workspace and returns its
// combined output. Any non-zero exit or timeout is an error.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) (string, error)
}

// CommandError describes a failed git invocation.
type CommandError struct {
	Args     []string
	Output   string
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	cmd := "git " + strings.Join(e.Args, " ")
	if e.TimedOut {
		return fmt.Sprintf("%s: timed out", cmd)
	}
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", cmd, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs the git binary with -C pointed at Dir. Transient network
// failures are retried with exponential backoff for up to RetryMaxElapsed;
// everything else fails on the first attempt.
type ExecRunner struct {
	Dir             string
	RetryMaxElapsed time.Duration
	Logger          *slog.Logger
}

// NewExecRunner creates an ExecRunner for the workspace at dir.
func NewExecRunner(dir string, retryMaxElapsed time.Duration, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{Dir: dir, RetryMaxElapsed: retryMaxElapsed, Logger: logger}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	if r.RetryMaxElapsed <= 0 {
		return r.runOnce(ctx, timeout, args)
	}

	var out string
	attempt := 0
	op := func() error {
		attempt++
		o, err := r.runOnce(ctx, timeout, args)
		out = o
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		r.Logger.Debug("git transient failure, retrying", "args", args, "attempt", attempt, "error", err)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = r.RetryMaxElapsed
	err := backoff.Retry(op, backoff.WithContext(bo, ctx))
	return out, err
}

func (r *ExecRunner) runOnce(ctx context.Context, timeout time.Duration, args []string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	full := append([]string{"-C", r.Dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...) //nolint:gosec // args are built internally
	// Never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := strings.TrimSpace(buf.String())
	if err != nil {
		return out, &CommandError{
			Args:     args,
			Output:   out,
			TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      err,
		}
	}
	return out, nil
}

// transientMarkers are git/network messages worth a retry.
var transientMarkers = []string{
	"could not resolve host",
	"connection timed out",
	"connection reset",
	"connection refused",
	"failed to connect",
	"early eof",
	"the remote end hung up unexpectedly",
	"temporary failure in name resolution",
}

func isTransient(err error) bool {
	var ce *CommandError
	if !errors.As(err, &ce) || ce.TimedOut {
		return false
	}
	msg := strings.ToLower(ce.Output)
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
