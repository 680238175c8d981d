package annex_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	annex "github.com/wagiedev/git-annex-adapter-go"
)

func TestOpen_NotAGitRepo(t *testing.T) {
	dir := t.TempDir()

	_, err := annex.Open(context.Background(), dir)
	require.Error(t, err)

	notRepo, ok := errors.AsType[*annex.NotAGitRepoError](err)
	require.True(t, ok, "expected NotAGitRepoError, got %T", err)
	require.Equal(t, dir, notRepo.Path)
	require.Contains(t, err.Error(), "is not a valid git repository")
}

func TestOpen_GitNotFound(t *testing.T) {
	dir, _ := initGoGitRepo(t)

	_, err := annex.Open(context.Background(), dir, annex.WithGitPath(filepath.Join(t.TempDir(), "missing-git")))

	_, ok := errors.AsType[*annex.ExecutableNotFoundError](err)
	require.True(t, ok, "expected ExecutableNotFoundError, got %v", err)
}

func TestRepo_Identity(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	require.Equal(t, dir, repo.Path())
	require.Equal(t, "annex.Repo("+dir+")", repo.String())
	require.Equal(t, "annex.Annex("+dir+")", repo.Annex.String())
	require.Same(t, repo, repo.Annex.Repo())
	require.NotNil(t, repo.Git)
}

func TestRepo_Config(t *testing.T) {
	dir, _ := initGoGitRepo(t)

	extra := "[annex]\n\tversion = 8\n" +
		"[remote \"origin\"]\n\turl = https://example.com/photos.git\n" +
		"[photos \"release.v1\"]\n\tmerge = refs/heads/release.v1\n"

	f, err := os.OpenFile(filepath.Join(dir, ".git", "config"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	_, err = f.WriteString(extra)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	repo := openFake(t, dir)

	value, err := repo.Config("annex.version")
	require.NoError(t, err)
	require.Equal(t, "8", value)

	value, err = repo.Config("remote.origin.url")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/photos.git", value)

	value, err = repo.Config("photos.release.v1.merge")
	require.NoError(t, err)
	require.Equal(t, "refs/heads/release.v1", value)

	_, err = repo.Config("annex.uuid")
	require.ErrorIs(t, err, annex.ErrConfigNotFound)

	_, err = repo.Config("remote.backup.url")
	require.ErrorIs(t, err, annex.ErrConfigNotFound)

	_, err = repo.Config("nosuchsection.key")
	require.ErrorIs(t, err, annex.ErrConfigNotFound)

	_, err = repo.Config("annex")
	require.Error(t, err)

	_, err = repo.Config("annex.")
	require.Error(t, err)
}

func TestRepo_BranchesAndReadFile(t *testing.T) {
	dir, gitRepo := initGoGitRepo(t)
	commitFile(t, gitRepo, dir, "uuid.log", "1234 laptop timestamp=1500000000s\n")

	repo := openFake(t, dir)

	branches, err := repo.Branches()
	require.NoError(t, err)
	require.Equal(t, []string{"master"}, branches)

	content, err := repo.ReadFile("master", "uuid.log")
	require.NoError(t, err)
	require.Equal(t, "1234 laptop timestamp=1500000000s\n", content)

	_, err = repo.ReadFile("master", "missing.log")
	require.Error(t, err)

	_, err = repo.ReadFile("no-such-branch", "uuid.log")
	require.Error(t, err)
}

func TestAnnex_RunAndVersion(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)
	ctx := context.Background()

	version, err := repo.Annex.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, "10.20230926", version)

	result, err := repo.Annex.Run(ctx, "init")
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "init ok\n", result.Stdout)
	require.Equal(t, dir, result.Command.Dir())

	result, err = repo.Annex.Run(ctx, "fail")
	require.Error(t, err)
	require.Equal(t, 4, result.ExitCode)

	procErr, ok := errors.AsType[*annex.ProcessError](err)
	require.True(t, ok)
	require.Equal(t, 4, procErr.ExitCode)
	require.Contains(t, procErr.Stderr, "something broke")
}

func TestAnnex_StartProcess(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	proc, err := repo.Annex.StartProcess(context.Background(), "lookupkey", "--batch")
	require.NoError(t, err)

	defer proc.Close()

	key, err := proc.Communicate("a.jpg")
	require.NoError(t, err)
	require.Equal(t, "SHA256E-s0--0.jpg", key)

	require.Equal(t, []string{repo.Annex.GitPath(), "annex", "lookupkey", "--batch"}, proc.Command().Args())
}

func TestInit_Fake(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	requestLog := filepath.Join(t.TempDir(), "requests.log")

	repo, err := annex.Init(context.Background(), dir,
		annex.InitOptions{Version: 8, Description: "my laptop"},
		annex.WithGitPath(writeFakeGit(t)),
		annex.WithEnv(map[string]string{"REQUEST_LOG": requestLog}),
	)
	require.NoError(t, err)
	require.Equal(t, dir, repo.Path())

	data, err := os.ReadFile(requestLog)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Contains(t, lines, "init --version=8 my laptop")
}

func TestInit_InvalidVersion(t *testing.T) {
	// No git binary is involved: the version is rejected first.
	_, err := annex.Init(context.Background(), t.TempDir(), annex.InitOptions{Version: -1},
		annex.WithGitPath(filepath.Join(t.TempDir(), "missing-git")),
	)

	versionErr, ok := errors.AsType[*annex.VersionError](err)
	require.True(t, ok, "expected VersionError, got %v", err)
	require.Equal(t, "-1", versionErr.Value)
}

func TestParseVersion(t *testing.T) {
	version, err := annex.ParseVersion("6")
	require.NoError(t, err)
	require.Equal(t, 6, version)

	version, err = annex.ParseVersion(" 10\n")
	require.NoError(t, err)
	require.Equal(t, 10, version)

	for _, value := range []string{"foo", "-1", "", "6.5"} {
		_, err := annex.ParseVersion(value)

		_, ok := errors.AsType[*annex.VersionError](err)
		require.True(t, ok, "value %q: expected VersionError, got %v", value, err)
	}
}

func TestMetadataBatch(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	requestLog := filepath.Join(t.TempDir(), "requests.log")
	repo := openFake(t, dir, annex.WithEnv(map[string]string{"REQUEST_LOG": requestLog}))

	meta, err := repo.Annex.Metadata(context.Background())
	require.NoError(t, err)

	defer meta.Close()

	record, err := meta.Get("SHA256E-s0--0")
	require.NoError(t, err)
	require.Equal(t, `{"command":"metadata","note":"","success":true,"key":"SHA256E-s0--0","file":null,"fields":{}}`, record.Raw)
	require.Nil(t, record.File)
	require.Empty(t, record.Fields)

	record, err = meta.GetFile("a.jpg")
	require.NoError(t, err)
	require.NotNil(t, record.File)
	require.Equal(t, "a.jpg", *record.File)

	record, err = meta.Set("K", map[string][]string{"tag": {"x"}, "old": nil})
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, record.Fields["tag"])

	record, err = meta.Get("missing")
	require.ErrorIs(t, err, annex.ErrBatchFailed)
	require.Equal(t, "key not present", record.Note)

	_, err = meta.Get("")
	require.ErrorIs(t, err, annex.ErrInvalidRequest)

	// The session survives failed requests.
	_, err = meta.Get("SHA256E-s0--0")
	require.NoError(t, err)

	require.NoError(t, meta.Close())
	require.True(t, meta.Process().Exited())

	data, err := os.ReadFile(requestLog)
	require.NoError(t, err)
	require.Contains(t, string(data), `{"key":"K","fields":{"old":[],"tag":["x"]}}`)
}

func TestInfoBatch(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	info, err := repo.Annex.Info(context.Background())
	require.NoError(t, err)

	defer info.Close()

	lines, err := info.Query("here")
	require.NoError(t, err)
	require.Equal(t, []string{"remote annex keys: 0", "remote annex size: 0 bytes"}, lines)

	fields, err := info.Fields(".")
	require.NoError(t, err)
	require.Len(t, fields, 7)
	require.Equal(t, annex.InfoField{Name: "directory", Value: "."}, fields[0])
	require.Equal(t, annex.InfoField{Name: "repositories containing these files", Value: "0"}, fields[6])

	lines, err = info.Query("here")
	require.NoError(t, err)
	require.Len(t, lines, 2)
}

func TestInfoJSONBatch(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	info, err := repo.Annex.InfoJSON(context.Background())
	require.NoError(t, err)

	defer info.Close()

	record, err := info.Query("here")
	require.NoError(t, err)
	require.Equal(t, "info here", record.Command)

	size, ok := record.Get("remote annex size")
	require.True(t, ok)
	require.Equal(t, "0 bytes", size)
}

func TestLookupKeyBatch(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	lookup, err := repo.Annex.LookupKey(context.Background())
	require.NoError(t, err)

	defer lookup.Close()

	key, ok, err := lookup.Lookup("a.jpg")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "SHA256E-s0--0.jpg", key)

	_, ok, err = lookup.Lookup("README")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = lookup.Lookup("")
	require.ErrorIs(t, err, annex.ErrInvalidRequest)
}

func TestBatch_TerminatedWhenProcessDies(t *testing.T) {
	dir, _ := initGoGitRepo(t)
	repo := openFake(t, dir)

	proc, err := repo.Annex.StartProcess(context.Background(), "fail")
	require.NoError(t, err)

	defer proc.Close()

	_, err = proc.ReadLine()

	terminated, ok := errors.AsType[*annex.TerminatedError](err)
	require.True(t, ok, "expected TerminatedError, got %v", err)
	require.Contains(t, terminated.Stderr, "something broke")
}
