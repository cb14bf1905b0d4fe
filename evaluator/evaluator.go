//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package evaluator provides the evaluator contract for scoring transcripts.
package evaluator

import (
	"context"

	"github.com/flowcoach/coacheval/metric"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// Evaluator scores one transcript against a test case's expectations.
// Implementations must be stateless across Evaluate calls: any retained
// trace is scoped to the returned Result.
type Evaluator interface {
	// Name returns the canonical metric name supported by this evaluator.
	Name() string
	// Description describes what this evaluator measures.
	Description() string
	// Evaluate scores the transcript produced for the test case.
	Evaluate(ctx context.Context, tc *testcase.TestCase, tr *transcript.Transcript,
		evalMetric *metric.EvalMetric) (*Result, error)
}

// Result is the outcome of a single metric evaluation.
type Result struct {
	// Score is the metric score in [0, 1].
	Score float64 `json:"score"`
	// Status reports whether the score met the metric threshold.
	Status status.EvalStatus `json:"status"`
	// Reason explains the outcome.
	Reason string `json:"reason,omitempty"`
	// Decisions is the ordered decision trace for decision-tree metrics.
	Decisions []Decision `json:"decisions,omitempty"`
}

// Decision records the outcome of one decision node for diagnostic reporting.
type Decision struct {
	// Node is the decision node name.
	Node string `json:"node"`
	// Passed reports whether the node check passed.
	Passed bool `json:"passed"`
}
