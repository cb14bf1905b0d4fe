//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package bridge executes test cases against the coach runtime, which lives
// in a separate process. The test case crosses the boundary as a JSON
// argument and the transcript comes back on standard output, so either side
// can be reimplemented independently as long as the encoding holds.
package bridge

import (
	"context"

	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// Bridge runs one test case against the coach runtime and returns the
// resulting transcript. Invocations are independent: no process, socket or
// file state is shared or reused across calls, and a failed invocation is a
// hard failure for that test case — never retried, never silently skipped.
type Bridge interface {
	// Run executes the test case and returns its transcript.
	// Failures are reported as *ExecutionError (the child process failed)
	// or *ProtocolError (its output was not a well-formed transcript).
	Run(ctx context.Context, tc *testcase.TestCase) (*transcript.Transcript, error)
}
