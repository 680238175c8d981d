package cli

import (
	"slices"
	"strconv"
)

// AnnexPrefix returns the fixed prefix for every git-annex invocation.
func AnnexPrefix(gitPath string) []string {
	if gitPath == "" {
		gitPath = "git"
	}

	return []string{gitPath, "annex"}
}

// VersionArgs builds the arguments for the raw version query.
func VersionArgs() []string {
	return []string{"version", "--raw"}
}

// InitArgs builds the arguments for `git annex init`.
//
// A zero version leaves the repository version to git-annex. The description
// is passed as the positional argument when set. Callers validate version.
func InitArgs(version int, description string) []string {
	args := []string{"init"}

	if version != 0 {
		args = append(args, "--version="+strconv.Itoa(version))
	}

	if description != "" {
		args = append(args, description)
	}

	return args
}

// MetadataBatchArgs builds the arguments for the JSON metadata batch protocol.
func MetadataBatchArgs() []string {
	return []string{"metadata", "--batch", "--json"}
}

// InfoBatchArgs builds the arguments for the info batch protocol.
// With json set every response is a single JSON object line.
func InfoBatchArgs(json bool) []string {
	args := []string{"info", "--batch"}
	if json {
		args = append(args, "--json")
	}

	return args
}

// LookupKeyBatchArgs builds the arguments for the lookupkey batch protocol.
func LookupKeyBatchArgs() []string {
	return []string{"lookupkey", "--batch"}
}

// Full joins a prefix and subcommand arguments into a new slice.
func Full(prefix []string, args ...string) []string {
	return append(slices.Clone(prefix), args...)
}
