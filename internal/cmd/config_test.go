package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
git_path = "/opt/git/bin/git"
log_level = "debug"
close_timeout = "2s"
skip_version_check = true

[env]
GIT_ANNEX_DEBUG = "1"
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, "/opt/git/bin/git", cfg.GitPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.SkipVersionCheck)
	require.Equal(t, map[string]string{"GIT_ANNEX_DEBUG": "1"}, cfg.Env)

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, timeout)
}

func TestLoadConfig_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := LoadConfig(missing, false)
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)

	_, err = LoadConfig(missing, true)
	require.Error(t, err)

	cfg, err = LoadConfig("", true)
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "syntax", body: `git_path = `, want: "parsing config"},
		{name: "log level", body: `log_level = "loud"`, want: "invalid log level"},
		{name: "timeout", body: `close_timeout = "soon"`, want: "invalid close_timeout"},
		{name: "negative timeout", body: `close_timeout = "-1s"`, want: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body), true)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("chatty")
	require.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	require.Equal(t, "/tmp/xdg/annexctl/config.toml", DefaultConfigPath())
}
