//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package bridge

import "fmt"

// ExecutionError reports that the coach runtime process failed: it exited
// non-zero, could not be started, or exceeded the configured timeout.
type ExecutionError struct {
	// CaseID identifies the test case being executed.
	CaseID string
	// ExitCode is the child process exit code, or -1 when it never ran to
	// completion.
	ExitCode int
	// Stderr carries the child process standard error for diagnosis.
	Stderr string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("bridge execution for case %s: %v (exit code %d)", e.CaseID, e.Err, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error { return e.Err }

// ProtocolError reports that the coach runtime produced output that is not a
// well-formed transcript. The raw output is retained for diagnosis.
type ProtocolError struct {
	// CaseID identifies the test case being executed.
	CaseID string
	// RawOutput is the undecodable child process output.
	RawOutput string
	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("bridge protocol for case %s: %v", e.CaseID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error { return e.Err }
