package annex_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	annex "github.com/wagiedev/git-annex-adapter-go"
)

// fakeGitScript answers the git-annex subcommands the facade uses. Requests
// are appended to $REQUEST_LOG when it is set.
const fakeGitScript = `#!/bin/sh
log() { [ -n "$REQUEST_LOG" ] && echo "$*" >> "$REQUEST_LOG"; return 0; }
[ "$1" = annex ] || exit 2
shift
log "$@"
case "$1" in
version)
	echo "10.20230926-g44a7b4c9734"
	;;
init)
	echo "init ok"
	;;
fail)
	echo "fatal: something broke" >&2
	exit 4
	;;
metadata)
	while IFS= read -r line; do
		log "$line"
		case "$line" in
		*'"key":"missing"'*)
			echo '{"command":"metadata","note":"key not present","success":false}'
			;;
		*'"fields"'*)
			echo '{"command":"metadata","note":"","success":true,"key":"K","file":null,"fields":{"tag":["x"]}}'
			;;
		*'"file"'*)
			echo '{"command":"metadata a.jpg","note":"","success":true,"key":"K","file":"a.jpg","fields":{}}'
			;;
		*)
			echo '{"command":"metadata","note":"","success":true,"key":"SHA256E-s0--0","file":null,"fields":{}}'
			;;
		esac
	done
	;;
info)
	if [ "$3" = "--json" ]; then
		while IFS= read -r target; do
			echo "{\"remote annex keys\":0,\"remote annex size\":\"0 bytes\",\"command\":\"info $target\",\"note\":\"\",\"success\":true}"
		done
		exit 0
	fi
	while IFS= read -r target; do
		case "$target" in
		here)
			echo "remote annex keys: 0"
			echo "remote annex size: 0 bytes"
			;;
		*)
			echo "directory: $target"
			echo "local annex keys: 0"
			echo "local annex size: 0 bytes"
			echo "annexed files in working tree: 0"
			echo "size of annexed files in working tree: 0 bytes"
			echo "numcopies stats:"
			echo "repositories containing these files: 0"
			;;
		esac
	done
	;;
lookupkey)
	while IFS= read -r file; do
		case "$file" in
		*.jpg) echo "SHA256E-s0--0.jpg" ;;
		*) echo "" ;;
		esac
	done
	;;
*)
	echo "unknown command $1" >&2
	exit 1
	;;
esac
`

// requireUnix skips tests that rely on /bin/sh scripts.
func requireUnix(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}
}

// writeFakeGit writes the fake git script into a temp dir and returns its path.
func writeFakeGit(t *testing.T) string {
	t.Helper()
	requireUnix(t)

	path := filepath.Join(t.TempDir(), "git")
	require.NoError(t, os.WriteFile(path, []byte(fakeGitScript), 0o755))

	return path
}

// initGoGitRepo creates an empty git repository without using the git binary.
func initGoGitRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return dir, repo
}

// commitFile writes name into the work tree and commits it.
func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// openFake opens dir with the fake git binary.
func openFake(t *testing.T, dir string, opts ...annex.Option) *annex.Repo {
	t.Helper()

	opts = append([]annex.Option{
		annex.WithGitPath(writeFakeGit(t)),
		annex.WithLogger(slog.Default()),
		annex.WithCloseTimeout(time.Second),
	}, opts...)

	repo, err := annex.Open(context.Background(), dir, opts...)
	require.NoError(t, err)

	return repo
}
