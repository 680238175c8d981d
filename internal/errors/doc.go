// Package errors defines error types for the git-annex adapter.
//
// This package provides structured error types for the different ways driving
// the git-annex subprocess can fail. All error types support error unwrapping
// and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
