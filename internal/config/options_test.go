package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithDefaults_NilReceiver(t *testing.T) {
	t.Parallel()

	var opts *Options

	got := opts.WithDefaults()

	require.NotNil(t, got.Logger)
	require.Equal(t, DefaultCloseTimeout, got.CloseTimeout)
	require.Equal(t, DefaultMaxLineSize, got.MaxLineSize)
	require.False(t, got.SkipVersionCheck)
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	opts := &Options{
		Logger:       log,
		GitPath:      "/opt/git/bin/git",
		Env:          map[string]string{"HOME": "/tmp"},
		CloseTimeout: time.Second,
		MaxLineSize:  64,
	}

	got := opts.WithDefaults()

	require.Same(t, log, got.Logger)
	require.Equal(t, "/opt/git/bin/git", got.GitPath)
	require.Equal(t, time.Second, got.CloseTimeout)
	require.Equal(t, 64, got.MaxLineSize)
	require.Equal(t, "/tmp", got.Env["HOME"])
}

func TestWithDefaults_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	opts := &Options{}
	_ = opts.WithDefaults()

	require.Nil(t, opts.Logger)
	require.Zero(t, opts.CloseTimeout)
	require.Zero(t, opts.MaxLineSize)
}
