package subprocess

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"slices"

	"github.com/wagiedev/git-annex-adapter-go/internal/config"
	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

// Result is the outcome of one completed Runner invocation.
type Result struct {
	Command  Command
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes one-shot commands sharing a fixed prefix and working directory.
// It holds no state between invocations.
type Runner struct {
	log    *slog.Logger
	prefix []string
	dir    string
	env    map[string]string
}

// NewRunner creates a runner for prefix (program name and leading arguments) in dir.
//
// The directory does not need to exist yet; it only has to exist when Run is
// called, otherwise Run returns a LaunchError.
func NewRunner(prefix []string, dir string, opts *config.Options) *Runner {
	opts = opts.WithDefaults()

	return &Runner{
		log:    opts.Logger.With("component", "runner"),
		prefix: slices.Clone(prefix),
		dir:    dir,
		env:    opts.Env,
	}
}

// Dir returns the working directory commands run in.
func (r *Runner) Dir() string {
	return r.dir
}

// Prefix returns a copy of the fixed command prefix.
func (r *Runner) Prefix() []string {
	return slices.Clone(r.prefix)
}

// Run executes prefix+args, waits for it to finish, and captures its output.
//
// A non-zero exit returns both the Result and a ProcessError carrying the
// exit code and captured streams. A failure to spawn the process returns a
// LaunchError and no Result.
func (r *Runner) Run(ctx context.Context, args ...string) (*Result, error) {
	command := NewCommand(r.dir, append(r.Prefix(), args...)...)
	if len(command.args) == 0 {
		return nil, errors.ErrEmptyCommand
	}

	r.log.Debug("Running command", "args", command.args, "dir", r.dir)

	var stdout, stderr bytes.Buffer

	cmd := command.build(ctx, r.env)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmd.ProcessState == nil {
		// The process never started.
		r.log.Error("Failed to launch command", "args", command.args, "error", err)

		return nil, &errors.LaunchError{Args: command.Args(), Dir: r.dir, Err: err}
	}

	result := &Result{
		Command:  command,
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err == nil {
		r.log.Debug("Command finished", "args", command.args, "exit_code", result.ExitCode)

		return result, nil
	}

	if _, ok := stderrors.AsType[*exec.ExitError](err); ok {
		r.log.Debug("Command exited with error", "args", command.args, "exit_code", result.ExitCode)
	} else {
		r.log.Debug("Command interrupted", "args", command.args, "error", err)
	}

	return result, &errors.ProcessError{
		Args:     command.Args(),
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Err:      err,
	}
}
