//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package rubric adapts the external judge capability to the evaluator
// contract. It performs no scoring logic of its own: criteria, conversation
// input, actual output and threshold are forwarded to the judge unchanged
// and its verdict is reported unmodified.
package rubric

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowcoach/coacheval/evaluator"
	"github.com/flowcoach/coacheval/judge"
	"github.com/flowcoach/coacheval/metric"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// rubricEvaluator delegates scoring to an external judge.
type rubricEvaluator struct {
	name  string
	judge judge.Judge
}

// New creates a rubric evaluator that reports under the given metric name.
func New(name string, j judge.Judge) (evaluator.Evaluator, error) {
	if name == "" {
		return nil, errors.New("metric name is empty")
	}
	if j == nil {
		return nil, errors.New("judge is nil")
	}
	return &rubricEvaluator{name: name, judge: j}, nil
}

// Name returns the metric name this evaluator reports under.
func (e *rubricEvaluator) Name() string {
	return e.name
}

// Description returns a description of what this evaluator does.
func (e *rubricEvaluator) Description() string {
	return "Delegates free-text quality judgment to an external model-grading capability"
}

// Evaluate forwards the conversation and final response to the judge.
// Judge unavailability yields a skipped result, not an error, so that runs
// without credentials degrade gracefully.
func (e *rubricEvaluator) Evaluate(ctx context.Context, tc *testcase.TestCase,
	tr *transcript.Transcript, evalMetric *metric.EvalMetric) (*evaluator.Result, error) {
	if tc == nil {
		return nil, errors.New("test case is nil")
	}
	if tr == nil {
		return nil, errors.New("transcript is nil")
	}
	if evalMetric == nil {
		return nil, errors.New("eval metric is nil")
	}
	if len(evalMetric.Criteria) == 0 {
		return nil, fmt.Errorf("metric %s has no rubric criteria", evalMetric.MetricName)
	}
	verdict, err := e.judge.Judge(ctx, &judge.Request{
		Criteria:  evalMetric.Criteria,
		Input:     tc.ConversationText(),
		Output:    tr.FinalOutput(),
		Threshold: evalMetric.Threshold,
	})
	if err != nil {
		if errors.Is(err, judge.ErrUnavailable) {
			return &evaluator.Result{
				Status: status.EvalStatusSkipped,
				Reason: err.Error(),
			}, nil
		}
		return nil, fmt.Errorf("judge metric %s: %w", evalMetric.MetricName, err)
	}
	evalStatus := status.EvalStatusFailed
	if verdict.Score >= evalMetric.Threshold {
		evalStatus = status.EvalStatusPassed
	}
	return &evaluator.Result{
		Score:  verdict.Score,
		Status: evalStatus,
		Reason: verdict.Reason,
	}, nil
}

// Ensure interface compliance.
var _ evaluator.Evaluator = (*rubricEvaluator)(nil)
