package subprocess

import (
	"context"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Command is a program with its arguments and the directory it runs in.
// It is immutable once constructed.
type Command struct {
	args []string
	dir  string
}

// NewCommand creates a command running args[0] with args[1:] in dir.
func NewCommand(dir string, args ...string) Command {
	return Command{
		args: slices.Clone(args),
		dir:  dir,
	}
}

// Args returns a copy of the command tokens, program name first.
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

// Dir returns the working directory.
func (c Command) Dir() string {
	return c.dir
}

// String renders the command for logs and errors.
func (c Command) String() string {
	return strings.Join(c.args, " ")
}

// build prepares an exec.Cmd for the command. The caller must have checked
// that the command is not empty.
func (c Command) build(ctx context.Context, env map[string]string) *exec.Cmd {
	//nolint:gosec // G204: running git-annex with dynamic args is the purpose of this package
	cmd := exec.CommandContext(ctx, c.args[0], c.args[1:]...)
	cmd.Dir = c.dir
	cmd.Env = buildEnvironment(env)

	return cmd
}

// buildEnvironment inherits the current environment, pins the locale so tool
// diagnostics are stable, then applies overrides in a deterministic order.
// exec.Cmd keeps the last value of duplicated keys.
func buildEnvironment(extra map[string]string) []string {
	env := append(os.Environ(), "LC_ALL=C")

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, key+"="+extra[key])
	}

	return env
}
