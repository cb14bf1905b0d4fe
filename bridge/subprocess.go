//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/flowcoach/coacheval/log"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// Default command for the coach runtime's test execution entry point.
var defaultCommand = []string{"npx", "tsx", "tests/coach-evaluation/run_test_case.ts"}

// subprocessBridge spawns a fresh coach runtime process per test case.
type subprocessBridge struct {
	command []string
	workDir string
	env     []string
	timeout time.Duration
}

// Option configures the subprocess bridge.
type Option func(*subprocessBridge)

// WithCommand sets the runtime command and its leading arguments. The
// encoded test case is always appended as the final positional argument.
func WithCommand(command string, args ...string) Option {
	return func(b *subprocessBridge) {
		b.command = append([]string{command}, args...)
	}
}

// WithWorkDir sets the working directory for the runtime process.
func WithWorkDir(workDir string) Option {
	return func(b *subprocessBridge) { b.workDir = workDir }
}

// WithEnv sets extra environment entries for the runtime process,
// in "key=value" form. They are appended to the parent environment.
func WithEnv(env ...string) Option {
	return func(b *subprocessBridge) { b.env = env }
}

// WithTimeout bounds each invocation. There is no timeout by default; when
// one is set, expiry surfaces as an *ExecutionError.
func WithTimeout(timeout time.Duration) Option {
	return func(b *subprocessBridge) { b.timeout = timeout }
}

// New creates a subprocess bridge.
func New(opt ...Option) Bridge {
	b := &subprocessBridge{command: defaultCommand}
	for _, o := range opt {
		o(b)
	}
	return b
}

// Run serializes the test case, spawns the runtime process with the payload
// as a single positional argument, blocks until it exits, and parses its
// standard output as the transcript.
func (b *subprocessBridge) Run(ctx context.Context, tc *testcase.TestCase) (*transcript.Transcript, error) {
	if tc == nil {
		return nil, errors.New("test case is nil")
	}
	payload, err := json.Marshal(tc)
	if err != nil {
		return nil, fmt.Errorf("marshal test case %s: %w", tc.ID, err)
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	args := append(append([]string{}, b.command[1:]...), string(payload))
	cmd := exec.CommandContext(ctx, b.command[0], args...)
	cmd.Dir = b.workDir
	if len(b.env) > 0 {
		cmd.Env = append(cmd.Environ(), b.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("bridge: running case %s via %v", tc.ID, b.command)
	if err := cmd.Run(); err != nil {
		return nil, b.executionError(ctx, tc.ID, err, stderr.String())
	}
	result, err := transcript.Decode(stdout.Bytes())
	if err != nil {
		return nil, &ProtocolError{
			CaseID:    tc.ID,
			RawOutput: stdout.String(),
			Err:       err,
		}
	}
	return result, nil
}

func (b *subprocessBridge) executionError(ctx context.Context, caseID string, err error, stderr string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	// A deadline hit reports as the context error rather than the opaque
	// "signal: killed" from the child.
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("coach runtime timed out: %w", ctxErr)
	}
	return &ExecutionError{
		CaseID:   caseID,
		ExitCode: exitCode,
		Stderr:   stderr,
		Err:      err,
	}
}

// Ensure interface compliance.
var _ Bridge = (*subprocessBridge)(nil)
