package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/papapumpkin/mash/internal/journal"
)

// Runner executes resolved commands according to the engine-wide mode
// flags. Dry-run logs the command's textual form and spawns nothing.
// Commands run to completion, one at a time; there is no timeout — a
// hang in a child tool hangs the run, which is acceptable for an
// interactive operator tool.
type Runner struct {
	Log     *zap.SugaredLogger
	Journal *journal.Recorder
	DryRun  bool
	Verbose bool
	Quiet   bool
}

// Run executes cmd as a critical step. A non-zero exit is returned as a
// *ExitError carrying the captured stderr; the caller is expected to
// abort its remaining stages.
func (r *Runner) Run(ctx context.Context, cmd *Command) error {
	if r.DryRun {
		r.logDry(cmd)
		return nil
	}
	_, stderr, err := r.spawn(ctx, cmd, cmd.forwardStdout)
	if err != nil {
		r.Log.Error(strings.TrimSpace(stderr))
		return err
	}
	if !r.Quiet {
		r.Log.Infof("%s completed successfully", cmd)
	}
	return nil
}

// RunLenient executes cmd best-effort: a failure is logged as a warning
// and otherwise swallowed, so the caller's state machine proceeds.
func (r *Runner) RunLenient(ctx context.Context, cmd *Command) {
	if r.DryRun {
		r.logDry(cmd)
		return
	}
	_, stderr, err := r.spawn(ctx, cmd, cmd.forwardStdout)
	if err != nil {
		r.Log.Warn(err.Error())
		if s := strings.TrimSpace(stderr); s != "" {
			r.Log.Warn(s)
		}
		return
	}
	if !r.Quiet {
		r.Log.Infof("%s completed successfully", cmd)
	}
}

// Output executes cmd and returns its captured stdout. Used for state
// queries (installed-package listings). Under dry-run no process is
// spawned and the output is empty, which makes reconcile-drift a no-op
// in dry runs.
func (r *Runner) Output(ctx context.Context, cmd *Command) (string, error) {
	if r.DryRun {
		r.logDry(cmd)
		return "", nil
	}
	stdout, stderr, err := r.spawn(ctx, cmd, false)
	if err != nil {
		r.Log.Error(strings.TrimSpace(stderr))
		return "", err
	}
	return stdout, nil
}

func (r *Runner) logDry(cmd *Command) {
	r.Log.Infof("[dry-run] %s", cmd)
	_ = r.Journal.Record(journal.Event{
		Kind:    journal.KindCommand,
		Command: cmd.String(),
		DryRun:  true,
	})
}

// spawn launches the command and blocks until it exits. Stdout is
// captured unless forwarded to the parent console; stderr is always
// captured. Non-zero exits come back as *ExitError.
func (r *Runner) spawn(ctx context.Context, cmd *Command, forwardStdout bool) (string, string, error) {
	if !r.Quiet {
		r.Log.Infof("%s", cmd)
	}

	argv := cmd.Argv()
	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Env = cmd.environ()

	var stdout, stderr bytes.Buffer
	if forwardStdout {
		proc.Stdout = os.Stdout
	} else {
		proc.Stdout = &stdout
	}
	proc.Stderr = &stderr

	runErr := proc.Run()
	out := stdout.String()
	errOut := stderr.String()

	if r.Verbose {
		if s := strings.TrimSpace(out); s != "" {
			r.Log.Debug(s)
		}
		if s := strings.TrimSpace(errOut); s != "" {
			r.Log.Debug(s)
		}
	}

	if runErr != nil {
		var xerr *exec.ExitError
		if errors.As(runErr, &xerr) {
			err := &ExitError{Cmd: cmd.String(), Code: xerr.ExitCode(), Stderr: errOut}
			_ = r.Journal.Record(journal.Event{
				Kind:     journal.KindCommandFailed,
				Command:  cmd.String(),
				ExitCode: err.Code,
				Detail:   strings.TrimSpace(errOut),
			})
			return out, errOut, err
		}
		return out, errOut, fmt.Errorf("starting %s: %w", cmd, runErr)
	}

	_ = r.Journal.Record(journal.Event{
		Kind:    journal.KindCommand,
		Command: cmd.String(),
	})
	return out, errOut, nil
}
