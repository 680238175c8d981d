package annex

import (
	"log/slog"
	"maps"
	"time"

	"github.com/wagiedev/git-annex-adapter-go/internal/config"
)

// Options configures repositories, runners and batch sessions.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithGitPath sets the explicit path to the git binary.
// If not set, git is searched in PATH.
func WithGitPath(path string) Option {
	return func(o *Options) {
		o.GitPath = path
	}
}

// WithEnv adds environment variables for every spawned process.
// Repeated calls merge; later values win.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// WithCloseTimeout bounds each stage of closing an interactive process:
// waiting for exit after stdin is closed, and again after SIGTERM.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.CloseTimeout = timeout
	}
}

// WithMaxLineSize limits the length of one output line of a batch session.
func WithMaxLineSize(size int) Option {
	return func(o *Options) {
		o.MaxLineSize = size
	}
}

// WithSkipVersionCheck disables the git-annex version probe in Open and Init.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *Options) {
		o.SkipVersionCheck = skip
	}
}
