package errors

import (
	"errors"
	"fmt"
	"strings"
)

// AnnexError is the base interface for all adapter errors.
type AnnexError interface {
	error
	IsAnnexError() bool
}

// Compile-time verification that all error types implement AnnexError.
var (
	_ AnnexError = (*ExecutableNotFoundError)(nil)
	_ AnnexError = (*LaunchError)(nil)
	_ AnnexError = (*ProcessError)(nil)
	_ AnnexError = (*TerminatedError)(nil)
	_ AnnexError = (*NotAGitRepoError)(nil)
	_ AnnexError = (*VersionError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrProcessClosed indicates the process session has been closed and cannot be reused.
	ErrProcessClosed = errors.New("process closed: sessions are single-use, start a new one")

	// ErrEmptyCommand indicates a command with no program name.
	ErrEmptyCommand = errors.New("command not specified")

	// ErrStdinClosed indicates a write after the process input was closed.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrInvalidRequest indicates a request that is not a single line.
	ErrInvalidRequest = errors.New("request must be a single line")

	// ErrLineTooLong indicates an output line exceeded the configured maximum size.
	ErrLineTooLong = errors.New("output line too long")

	// ErrBatchFailed indicates git-annex reported success=false for a batch request.
	ErrBatchFailed = errors.New("batch request failed")

	// ErrInvalidRecord indicates git-annex output did not have the documented shape.
	ErrInvalidRecord = errors.New("invalid git-annex output")

	// ErrConfigNotFound indicates a git config key is not set.
	ErrConfigNotFound = errors.New("config key not found")
)

// ExecutableNotFoundError indicates the git binary was not found.
type ExecutableNotFoundError struct {
	Name          string
	SearchedPaths []string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("%s not found in: %v", e.Name, e.SearchedPaths)
}

// IsAnnexError implements AnnexError.
func (e *ExecutableNotFoundError) IsAnnexError() bool { return true }

// LaunchError indicates the OS could not create the subprocess.
type LaunchError struct {
	Args []string
	Dir  string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q in %s: %v", strings.Join(e.Args, " "), e.Dir, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsAnnexError implements AnnexError.
func (e *LaunchError) IsAnnexError() bool { return true }

// ProcessError indicates a one-shot command ran and exited with a non-zero status.
type ProcessError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	return fmt.Sprintf("command %q failed (exit %d): %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsAnnexError implements AnnexError.
func (e *ProcessError) IsAnnexError() bool { return true }

// TerminatedError indicates the subprocess exited or closed its output
// while a response was still expected.
type TerminatedError struct {
	Args    []string
	Partial string
	Stderr  string
	Err     error
}

func (e *TerminatedError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "process %q terminated unexpectedly", strings.Join(e.Args, " "))

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, " (stderr: %s)", stderr)
	}

	return b.String()
}

func (e *TerminatedError) Unwrap() error {
	return e.Err
}

// IsAnnexError implements AnnexError.
func (e *TerminatedError) IsAnnexError() bool { return true }

// NotAGitRepoError indicates a path does not hold a valid git repository.
type NotAGitRepoError struct {
	Path string
	Err  error
}

func (e *NotAGitRepoError) Error() string {
	return fmt.Sprintf("path %s is not a valid git repository", e.Path)
}

func (e *NotAGitRepoError) Unwrap() error {
	return e.Err
}

// IsAnnexError implements AnnexError.
func (e *NotAGitRepoError) IsAnnexError() bool { return true }

// VersionError indicates an invalid git-annex repository version argument.
type VersionError struct {
	Value string
	Err   error
}

func (e *VersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid annex repository version %q: %v", e.Value, e.Err)
	}

	return fmt.Sprintf("invalid annex repository version %q", e.Value)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

// IsAnnexError implements AnnexError.
func (e *VersionError) IsAnnexError() bool { return true }
