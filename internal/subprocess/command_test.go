package subprocess

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommand_IsImmutable(t *testing.T) {
	args := []string{"git", "annex", "info", "--batch"}
	cmd := NewCommand("/repo", args...)

	args[2] = "drop"

	got := cmd.Args()
	require.Equal(t, []string{"git", "annex", "info", "--batch"}, got)

	got[0] = "rm"

	require.Equal(t, "git annex info --batch", cmd.String())
	require.Equal(t, "/repo", cmd.Dir())
}

func TestBuildEnvironment(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")

	env := buildEnvironment(map[string]string{
		"ZED":  "last",
		"ALFA": "first",
	})

	lcAll := slices.Index(env, "LC_ALL=C")
	alfa := slices.Index(env, "ALFA=first")
	zed := slices.Index(env, "ZED=last")

	require.Positive(t, lcAll)
	require.Greater(t, alfa, lcAll)
	require.Greater(t, zed, alfa)
	require.Less(t, slices.Index(env, "LC_ALL=de_DE.UTF-8"), lcAll)
}

func TestFramers(t *testing.T) {
	t.Run("until count", func(t *testing.T) {
		framer := UntilCount(2)

		require.False(t, framer.Complete([]string{"a"}))
		require.True(t, framer.Complete([]string{"a", "b"}))
	})

	t.Run("until count non-positive", func(t *testing.T) {
		require.True(t, UntilCount(0).Complete([]string{"a"}))
		require.True(t, UntilCount(-3).Complete([]string{"a"}))
	})

	t.Run("until blank line", func(t *testing.T) {
		framer := UntilBlankLine()

		require.False(t, framer.Complete([]string{"a"}))
		require.False(t, framer.Complete([]string{"", "a"}))
		require.True(t, framer.Complete([]string{"a", ""}))
	})

	t.Run("func adapter", func(t *testing.T) {
		framer := FramerFunc(func(lines []string) bool { return len(lines) == 3 })

		require.True(t, framer.Complete([]string{"a", "b", "c"}))
	})
}
