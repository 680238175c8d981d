// Package config provides configuration types for the git-annex adapter.
package config

import (
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultCloseTimeout bounds each shutdown stage of an interactive process.
	DefaultCloseTimeout = 5 * time.Second

	// DefaultMaxLineSize is the maximum size of a single output line.
	DefaultMaxLineSize = 1024 * 1024 // 1MB

	// SkipVersionCheckEnv disables the git-annex version probe when set.
	SkipVersionCheckEnv = "GIT_ANNEX_ADAPTER_SKIP_VERSION_CHECK"
)

// Options configures the behavior of the adapter.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// GitPath is an explicit path to the git binary.
	// If empty, git is searched in PATH and common locations.
	GitPath string

	// Env holds additional environment variables for spawned processes.
	// They override inherited variables of the same name.
	Env map[string]string

	// CloseTimeout bounds how long Close waits after closing stdin, and again
	// after asking the process to terminate, before killing it.
	CloseTimeout time.Duration

	// MaxLineSize limits the length of one output line read from a process.
	MaxLineSize int

	// SkipVersionCheck skips the git-annex version probe during discovery.
	SkipVersionCheck bool
}

// WithDefaults returns a copy of the options with zero values replaced by defaults.
// A nil receiver yields the defaults.
func (o *Options) WithDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}

	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if out.CloseTimeout <= 0 {
		out.CloseTimeout = DefaultCloseTimeout
	}

	if out.MaxLineSize <= 0 {
		out.MaxLineSize = DefaultMaxLineSize
	}

	return &out
}
