package subprocess

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/git-annex-adapter-go/internal/config"
)

// requireUnix skips tests that rely on /bin/sh scripts.
func requireUnix(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}
}

// writeScript writes an executable shell script into a temp dir and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-annex")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)

	return path
}

// testOptions returns options with short timeouts suitable for tests.
func testOptions() *config.Options {
	return &config.Options{
		Logger:       slog.Default(),
		CloseTimeout: 500 * time.Millisecond,
	}
}
