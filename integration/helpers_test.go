//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	annex "github.com/wagiedev/git-annex-adapter-go"
)

// requireGitAnnex returns the git binary, skipping the test when git-annex
// is not installed.
func requireGitAnnex(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX system")
	}

	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not installed")
	}

	if err := exec.Command(gitPath, "annex", "version", "--raw").Run(); err != nil {
		t.Skip("git-annex not installed")
	}

	return gitPath
}

// e2eOptions returns options for tests against the real git-annex.
func e2eOptions(gitPath string) []annex.Option {
	return []annex.Option{
		annex.WithGitPath(gitPath),
		annex.WithLogger(slog.Default()),
		annex.WithSkipVersionCheck(true),
		annex.WithEnv(map[string]string{
			"GIT_AUTHOR_NAME":     "Test",
			"GIT_AUTHOR_EMAIL":    "test@example.com",
			"GIT_COMMITTER_NAME":  "Test",
			"GIT_COMMITTER_EMAIL": "test@example.com",
		}),
	}
}

// newGitRepo runs `git init` in a fresh temp dir.
func newGitRepo(t *testing.T, gitPath string) string {
	t.Helper()

	dir := t.TempDir()

	_, err := annex.NewRunner([]string{gitPath}, dir).Run(context.Background(), "init", "-q")
	require.NoError(t, err)

	return dir
}
