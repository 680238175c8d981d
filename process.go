package annex

import (
	"context"

	"github.com/wagiedev/git-annex-adapter-go/internal/subprocess"
)

// Command is an immutable program invocation: arguments and working directory.
type Command = subprocess.Command

// Process is an interactive session with one long-lived subprocess.
// A Process must not be used from more than one goroutine at a time.
type Process = subprocess.Process

// Runner executes one-shot commands sharing a prefix and working directory.
type Runner = subprocess.Runner

// Result is the outcome of one completed Runner invocation.
type Result = subprocess.Result

// Framer decides when a multi-line response is complete.
type Framer = subprocess.Framer

// FramerFunc adapts a function to the Framer interface.
type FramerFunc = subprocess.FramerFunc

// NewCommand creates a command that runs args in dir.
func NewCommand(dir string, args ...string) Command {
	return subprocess.NewCommand(dir, args...)
}

// NewRunner creates a runner for prefix in dir.
func NewRunner(prefix []string, dir string, opts ...Option) *Runner {
	return subprocess.NewRunner(prefix, dir, applyOptions(opts))
}

// StartProcess spawns command as an interactive session.
// The caller owns the returned Process and must Close it.
func StartProcess(ctx context.Context, command Command, opts ...Option) (*Process, error) {
	return subprocess.Start(ctx, command, applyOptions(opts))
}

// UntilCount frames responses of exactly n lines.
func UntilCount(n int) Framer {
	return subprocess.UntilCount(n)
}

// UntilBlankLine frames responses terminated by an empty line.
func UntilBlankLine() Framer {
	return subprocess.UntilBlankLine()
}
