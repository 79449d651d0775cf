// Package errors provides error handling for the ion-hash test driver.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing failures
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrTimeout) {
//	    // handle hung implementation
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Sentinel errors for the driver's failure taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrDiscovery indicates the test-data root is unreadable or contains no
	// recognizable test artifacts. Fatal: the run aborts before any invocations.
	ErrDiscovery = New("test data discovery failed")

	// ErrConfig indicates the driver configuration or implementation registry
	// could not be loaded or validated. Fatal: aborts before a run starts.
	ErrConfig = New("invalid configuration")

	// ErrProcess indicates an implementation exited non-zero or failed to
	// start. Recorded per invocation, never aborts the run.
	ErrProcess = New("implementation process failed")

	// ErrParse indicates an implementation exited zero but its stdout violated
	// the digest-line contract. Recorded per invocation.
	ErrParse = New("implementation output malformed")

	// ErrTimeout indicates an implementation exceeded the invocation bound and
	// was force-terminated. Recorded per invocation.
	ErrTimeout = New("implementation timed out")

	// ErrRunCancelled indicates the run was interrupted before all scheduled
	// invocations completed. No report is produced.
	ErrRunCancelled = New("run cancelled")
)

// IsFatal reports whether err invalidates the run's inputs and must abort
// the run before a report is produced. Per-invocation failures (process,
// parse, timeout) are never fatal.
func IsFatal(err error) bool {
	return err != nil && IsAny(err, ErrDiscovery, ErrConfig)
}

// IsInvocationError reports whether err belongs to the contained,
// per-invocation failure classes that are surfaced as report data.
func IsInvocationError(err error) bool {
	return err != nil && IsAny(err, ErrProcess, ErrParse, ErrTimeout)
}

// NewDiscoveryError creates a discovery error with a formatted message.
func NewDiscoveryError(format string, args ...interface{}) error {
	return Wrap(ErrDiscovery, Newf(format, args...).Error())
}

// NewConfigError creates a configuration error with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return Wrap(ErrConfig, Newf(format, args...).Error())
}
