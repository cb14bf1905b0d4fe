//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package judge provides the external model-grading capability contract.
package judge

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the judge capability is not usable in the
// current environment, typically because credentials are missing. Callers
// treat it as a skip, not a scoring failure.
var ErrUnavailable = errors.New("judge capability unavailable")

// Request carries everything the judge needs to grade one response.
// The adapter forwards these fields unchanged.
type Request struct {
	// Criteria lists the rubric criteria descriptions.
	Criteria []string
	// Input is the full conversation text, one "role: content" line per turn.
	Input string
	// Output is the final assistant message, or empty if none was produced.
	Output string
	// Threshold is the minimum passing score in [0, 1].
	Threshold float64
}

// Verdict is the judge's grading of one response.
type Verdict struct {
	// Score is the judged score in [0, 1].
	Score float64
	// Reason is the judge's explanation.
	Reason string
}

// Judge grades free-text output against stated criteria.
// Implementations are non-deterministic external collaborators; the
// deterministic core never depends on them.
type Judge interface {
	// Judge grades the request and returns the verdict.
	// Returns an error wrapping ErrUnavailable when the capability cannot
	// be used at all.
	Judge(ctx context.Context, req *Request) (*Verdict, error)
}
