package annex

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/wagiedev/git-annex-adapter-go/internal/cli"
	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

// Repo is a git repository with git-annex functionality attached.
//
// Git gives direct access to the object store; Annex drives the git-annex
// command line tool in the repository's directory.
type Repo struct {
	Git   *git.Repository
	Annex *Annex

	path string
}

// Open opens the git repository at path and discovers the git binary.
//
// path must be the top of a working tree or a git directory; parents are not
// searched. Returns a NotAGitRepoError if no repository is found there.
func Open(ctx context.Context, path string, opts ...Option) (*Repo, error) {
	options := applyOptions(opts).WithDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}

	gitRepo, err := git.PlainOpen(abs)
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, &errors.NotAGitRepoError{Path: path, Err: err}
		}

		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}

	gitPath, err := cli.NewDiscoverer(&cli.Config{
		GitPath:          options.GitPath,
		SkipVersionCheck: options.SkipVersionCheck,
		Logger:           options.Logger,
	}).Discover(ctx)
	if err != nil {
		return nil, err
	}

	options.GitPath = gitPath

	repo := &Repo{Git: gitRepo, path: abs}
	repo.Annex = newAnnex(repo, options)

	options.Logger.Debug("Opened repository", "path", abs, "git_path", gitPath)

	return repo, nil
}

// Path returns the absolute path the repository was opened at.
func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) String() string {
	return fmt.Sprintf("annex.Repo(%s)", r.path)
}

// Config returns the value of a dotted git config key such as
// "annex.version" or "remote.origin.url". Returns ErrConfigNotFound when the
// key is not set in the repository configuration.
func (r *Repo) Config(key string) (string, error) {
	section, subsection, name, err := splitConfigKey(key)
	if err != nil {
		return "", err
	}

	cfg, err := r.Git.Config()
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}

	if !cfg.Raw.HasSection(section) {
		return "", fmt.Errorf("%w: %s", errors.ErrConfigNotFound, key)
	}

	sec := cfg.Raw.Section(section)

	if subsection == "" {
		if !sec.HasOption(name) {
			return "", fmt.Errorf("%w: %s", errors.ErrConfigNotFound, key)
		}

		return sec.Option(name), nil
	}

	if !sec.HasSubsection(subsection) {
		return "", fmt.Errorf("%w: %s", errors.ErrConfigNotFound, key)
	}

	sub := sec.Subsection(subsection)
	if !sub.HasOption(name) {
		return "", fmt.Errorf("%w: %s", errors.ErrConfigNotFound, key)
	}

	return sub.Option(name), nil
}

// splitConfigKey splits "section[.subsection].name". The subsection may
// itself contain dots.
func splitConfigKey(key string) (section, subsection, name string, err error) {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")

	if first <= 0 || last == len(key)-1 {
		return "", "", "", fmt.Errorf("invalid config key %q", key)
	}

	section = key[:first]
	name = key[last+1:]

	if first != last {
		subsection = key[first+1 : last]
	}

	return section, subsection, name, nil
}

// Branches returns the short names of all local branches.
func (r *Repo) Branches() ([]string, error) {
	iter, err := r.Git.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()

	var names []string

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	return names, nil
}

// ReadFile returns the contents of path in the tree of revision rev,
// for example ReadFile("git-annex", "uuid.log").
func (r *Repo) ReadFile(rev, path string) (string, error) {
	hash, err := r.Git.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("resolve revision %s: %w", rev, err)
	}

	commit, err := r.Git.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", hash, err)
	}

	file, err := commit.File(path)
	if err != nil {
		return "", fmt.Errorf("read %s:%s: %w", rev, path, err)
	}

	return file.Contents()
}
