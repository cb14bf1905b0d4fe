//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package evalresult provides evaluation result types and their storage.
package evalresult

import (
	"context"

	"github.com/flowcoach/coacheval/evaluator"
	"github.com/flowcoach/coacheval/internal/epochtime"
	"github.com/flowcoach/coacheval/status"
)

// MetricVerdict is the immutable outcome of one metric evaluation for one
// test case.
type MetricVerdict struct {
	// MetricName identifies the metric.
	MetricName string `json:"metricName"`
	// Score obtained for this metric, in [0, 1].
	Score float64 `json:"score"`
	// Threshold that was used.
	Threshold float64 `json:"threshold"`
	// Status of this metric evaluation.
	Status status.EvalStatus `json:"status"`
	// Reason explains the outcome.
	Reason string `json:"reason,omitempty"`
	// Decisions is the decision trace for decision-tree metrics.
	Decisions []evaluator.Decision `json:"decisions,omitempty"`
}

// Successful reports whether the verdict passed its threshold.
func (v *MetricVerdict) Successful() bool {
	return v.Status == status.EvalStatusPassed
}

// CaseResult is the aggregated outcome of one test case.
type CaseResult struct {
	// CaseID identifies the test case.
	CaseID string `json:"caseId"`
	// Description is the test case description.
	Description string `json:"description,omitempty"`
	// Status is the overall case status.
	Status status.EvalStatus `json:"status"`
	// MetricVerdicts contains the verdict for each evaluated metric.
	MetricVerdicts []*MetricVerdict `json:"metricVerdicts,omitempty"`
	// ErrorMessage carries the failure detail when the case could not be
	// scored at all (bridge or configuration failure).
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// RunResult is the aggregated report of one evaluation run over a corpus.
// Case results keep corpus declaration order regardless of completion order.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"runId"`
	// Status summarizes the run across cases.
	Status status.EvalStatus `json:"status"`
	// CaseResults contains per-case results in corpus order.
	CaseResults []*CaseResult `json:"caseResults,omitempty"`
	// CreationTimestamp when this run completed.
	CreationTimestamp *epochtime.EpochTime `json:"creationTimestamp,omitempty"`
}

// Manager defines the interface for storing evaluation run results.
type Manager interface {
	// Save stores a run result and returns its run ID.
	Save(ctx context.Context, result *RunResult) (string, error)
	// Get retrieves a run result by run ID.
	Get(ctx context.Context, runID string) (*RunResult, error)
	// List returns all stored run IDs sorted lexicographically.
	List(ctx context.Context) ([]string, error)
}
