package annex

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/wagiedev/git-annex-adapter-go/internal/cli"
	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
	"github.com/wagiedev/git-annex-adapter-go/internal/subprocess"
)

// InitOptions are the arguments of `git annex init`.
type InitOptions struct {
	// Version is the annex repository version. Zero leaves the choice to
	// git-annex.
	Version int

	// Description names the repository in git-annex's uuid log.
	Description string
}

// Init runs `git annex init` in the existing git repository at path and
// opens it.
//
// Running Init on a repository that already has an annex succeeds. A
// negative version fails with a VersionError before anything is run; a
// path that is not a git repository fails with a ProcessError from
// git-annex.
func Init(ctx context.Context, path string, setup InitOptions, opts ...Option) (*Repo, error) {
	if setup.Version < 0 {
		return nil, &errors.VersionError{Value: strconv.Itoa(setup.Version)}
	}

	options := applyOptions(opts).WithDefaults()

	gitPath, err := cli.NewDiscoverer(&cli.Config{
		GitPath:          options.GitPath,
		SkipVersionCheck: options.SkipVersionCheck,
		Logger:           options.Logger,
	}).Discover(ctx)
	if err != nil {
		return nil, err
	}

	runner := subprocess.NewRunner(cli.AnnexPrefix(gitPath), path, options)
	if _, err := runner.Run(ctx, cli.InitArgs(setup.Version, setup.Description)...); err != nil {
		return nil, fmt.Errorf("git annex init: %w", err)
	}

	options.Logger.Info("Initialized annex", "path", path, "version", setup.Version)

	// Discovery already ran above.
	return Open(ctx, path, slices.Concat(opts, []Option{WithGitPath(gitPath), WithSkipVersionCheck(true)})...)
}

// ParseVersion parses a repository version given as text.
// Returns a VersionError for anything that is not a non-negative integer.
func ParseVersion(value string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &errors.VersionError{Value: value, Err: err}
	}

	if version < 0 {
		return 0, &errors.VersionError{Value: value}
	}

	return version, nil
}
