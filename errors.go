package annex

import "github.com/wagiedev/git-annex-adapter-go/internal/errors"

// Re-export error types from internal package

// AnnexError is the base interface for all adapter errors.
type AnnexError = errors.AnnexError

// ExecutableNotFoundError indicates the git binary was not found.
type ExecutableNotFoundError = errors.ExecutableNotFoundError

// LaunchError indicates a process could not be started.
type LaunchError = errors.LaunchError

// ProcessError indicates a one-shot command exited with a non-zero status.
type ProcessError = errors.ProcessError

// TerminatedError indicates an interactive process ended before producing
// the expected output.
type TerminatedError = errors.TerminatedError

// NotAGitRepoError indicates a path is not a git repository.
type NotAGitRepoError = errors.NotAGitRepoError

// VersionError indicates an invalid git-annex repository version.
type VersionError = errors.VersionError

// Re-export sentinel errors from internal package.
var (
	// ErrProcessClosed indicates the process session has been closed.
	ErrProcessClosed = errors.ErrProcessClosed

	// ErrEmptyCommand indicates a command with no program name.
	ErrEmptyCommand = errors.ErrEmptyCommand

	// ErrStdinClosed indicates a write after the process input was closed.
	ErrStdinClosed = errors.ErrStdinClosed

	// ErrInvalidRequest indicates a malformed batch request.
	ErrInvalidRequest = errors.ErrInvalidRequest

	// ErrLineTooLong indicates an output line exceeded the maximum size.
	ErrLineTooLong = errors.ErrLineTooLong

	// ErrBatchFailed indicates git-annex reported failure for a batch request.
	ErrBatchFailed = errors.ErrBatchFailed

	// ErrInvalidRecord indicates git-annex output with an unexpected shape.
	ErrInvalidRecord = errors.ErrInvalidRecord

	// ErrConfigNotFound indicates a git config key is not set.
	ErrConfigNotFound = errors.ErrConfigNotFound
)
