package annex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagiedev/git-annex-adapter-go/internal/cli"
	"github.com/wagiedev/git-annex-adapter-go/internal/protocol"
	"github.com/wagiedev/git-annex-adapter-go/internal/subprocess"
)

// Annex provides git-annex functionality for one repository.
//
// Every method runs `git annex` with the repository path as working
// directory. One-shot commands go through Run; batch protocols get their
// own long-lived session.
type Annex struct {
	log    *slog.Logger
	repo   *Repo
	opts   *Options
	runner *subprocess.Runner
}

func newAnnex(repo *Repo, opts *Options) *Annex {
	return &Annex{
		log:    opts.Logger.With("component", "annex", "repo", repo.path),
		repo:   repo,
		opts:   opts,
		runner: subprocess.NewRunner(cli.AnnexPrefix(opts.GitPath), repo.path, opts),
	}
}

func (a *Annex) String() string {
	return fmt.Sprintf("annex.Annex(%s)", a.repo.path)
}

// Repo returns the repository the annex belongs to.
func (a *Annex) Repo() *Repo {
	return a.repo
}

// GitPath returns the git binary used to run git-annex.
func (a *Annex) GitPath() string {
	return a.opts.GitPath
}

// Runner returns the one-shot runner bound to `git annex` in the repository.
func (a *Annex) Runner() *Runner {
	return a.runner
}

// Version returns the installed git-annex version, such as "10.20230926".
func (a *Annex) Version(ctx context.Context) (string, error) {
	return cli.ProbeVersion(ctx, a.opts.GitPath, a.log)
}

// Run executes `git annex <args>` and waits for it to finish.
func (a *Annex) Run(ctx context.Context, args ...string) (*Result, error) {
	return a.runner.Run(ctx, args...)
}

// StartProcess starts `git annex <args>` as an interactive session.
// The caller owns the returned Process and must Close it.
func (a *Annex) StartProcess(ctx context.Context, args ...string) (*Process, error) {
	command := subprocess.NewCommand(a.repo.path, cli.Full(cli.AnnexPrefix(a.opts.GitPath), args...)...)

	return subprocess.Start(ctx, command, a.opts)
}

// startBatch starts the session of one batch protocol.
func (a *Annex) startBatch(ctx context.Context, p protocol.Protocol) (batch, error) {
	proc, err := subprocess.Start(ctx, p.Command(a.opts.GitPath, a.repo.path), a.opts)
	if err != nil {
		return batch{}, fmt.Errorf("start %s batch: %w", p.Name, err)
	}

	a.log.Debug("Started batch session", "protocol", p.Name, "session", proc.ID())

	return batch{proc: proc, protocol: p}, nil
}

// batch holds the session shared by the batch wrappers.
type batch struct {
	proc     *subprocess.Process
	protocol protocol.Protocol
}

// Process returns the underlying session.
func (b *batch) Process() *Process {
	return b.proc
}

// Close ends the batch session and reaps git-annex.
func (b *batch) Close() error {
	return b.proc.Close()
}
