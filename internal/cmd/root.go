// Package cmd provides CLI commands for the annexctl tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	annex "github.com/wagiedev/git-annex-adapter-go"
)

// Version is the annexctl version, set at build time.
var Version = "dev"

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	repo       string
	configPath string
	gitPath    string
	logLevel   string

	log *slog.Logger
	cfg *Config
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		// Already printed by cobra.
		return 1
	}

	return 0
}

// NewRootCommand builds the annexctl command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:     "annexctl",
		Short:   "Query and set up git-annex repositories",
		Version: Version,
		Long: `annexctl drives git-annex through its batch protocols.

Batch subcommands start one git-annex session and send every argument
through it, so querying many keys costs a single process.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.repo, "repo", "C", ".", "path of the git repository")
	flags.StringVar(&g.configPath, "config", "", "config file (default "+DefaultConfigPath()+")")
	flags.StringVar(&g.gitPath, "git", "", "path of the git binary")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newInitCommand(g),
		newVersionCommand(g),
		newMetadataCommand(g),
		newInfoCommand(g),
		newLookupKeyCommand(g),
		newMCPCommand(g),
	)

	return root
}

// setup loads the config file and builds the logger. Flags win over the
// config file.
func (g *globals) setup(cmd *cobra.Command) error {
	path, required := g.configPath, true
	if path == "" {
		path, required = DefaultConfigPath(), false
	}

	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}

	g.cfg = cfg

	levelName := g.logLevel
	if levelName == "" {
		levelName = cfg.LogLevel
	}

	if levelName == "" {
		levelName = "warn"
	}

	level, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	g.log = newLogger(cmd.ErrOrStderr(), level)

	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// options turns flags and config into adapter options.
func (g *globals) options() ([]annex.Option, error) {
	timeout, err := g.cfg.Timeout()
	if err != nil {
		return nil, err
	}

	opts := []annex.Option{
		annex.WithLogger(g.log),
		annex.WithGitPath(g.gitBinary()),
		annex.WithSkipVersionCheck(g.cfg.SkipVersionCheck),
		annex.WithEnv(g.cfg.Env),
	}

	if timeout > 0 {
		opts = append(opts, annex.WithCloseTimeout(timeout))
	}

	return opts, nil
}

// gitBinary returns the git path from --git or the config file.
func (g *globals) gitBinary() string {
	if g.gitPath != "" {
		return g.gitPath
	}

	return g.cfg.GitPath
}

// open opens the repository named by --repo.
func (g *globals) open(ctx context.Context) (*annex.Repo, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}

	repo, err := annex.Open(ctx, g.repo, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", g.repo, err)
	}

	return repo, nil
}
