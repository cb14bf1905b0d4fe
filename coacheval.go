//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package coacheval replays scripted conversations against the Flow Coach
// agent and scores the resulting transcripts with deterministic and
// judge-backed metrics.
package coacheval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/flowcoach/coacheval/bridge"
	"github.com/flowcoach/coacheval/evalresult"
	"github.com/flowcoach/coacheval/evalresult/inmemory"
	"github.com/flowcoach/coacheval/evaluator/registry"
	"github.com/flowcoach/coacheval/evaluator/rubric"
	"github.com/flowcoach/coacheval/internal/epochtime"
	"github.com/flowcoach/coacheval/judge"
	judgeopenai "github.com/flowcoach/coacheval/judge/openai"
	"github.com/flowcoach/coacheval/log"
	"github.com/flowcoach/coacheval/metric"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// CoachEvaluator runs a test case corpus through the bridge and scores every
// case with its applicable metrics.
type CoachEvaluator interface {
	// Evaluate runs the whole corpus and returns the persisted run result.
	Evaluate(ctx context.Context) (*evalresult.RunResult, error)
	// Close releases owned resources.
	Close() error
}

// coachEvaluator is the default implementation of CoachEvaluator.
type coachEvaluator struct {
	bridge        bridge.Bridge
	source        testcase.Source
	registry      registry.Registry
	resultManager evalresult.Manager
	runIDSupplier func() string
	pool          *casePool
}

// New creates a CoachEvaluator over the given bridge and corpus source.
// If no Option is provided, rubric metrics use the environment-configured
// OpenAI judge and results are kept in memory.
func New(b bridge.Bridge, source testcase.Source, opt ...Option) (CoachEvaluator, error) {
	if b == nil {
		return nil, errors.New("bridge is nil")
	}
	if source == nil {
		return nil, errors.New("test case source is nil")
	}
	opts := newOptions(opt...)
	if opts.runIDSupplier == nil {
		return nil, errors.New("run id supplier is nil")
	}
	if opts.judge == nil {
		opts.judge = judgeopenai.New()
	}
	if opts.registry == nil {
		reg, err := defaultRegistry(opts.judge)
		if err != nil {
			return nil, fmt.Errorf("build default registry: %w", err)
		}
		opts.registry = reg
	}
	if opts.resultManager == nil {
		opts.resultManager = inmemory.New()
	}
	e := &coachEvaluator{
		bridge:        b,
		source:        source,
		registry:      opts.registry,
		resultManager: opts.resultManager,
		runIDSupplier: opts.runIDSupplier,
	}
	if opts.parallelism > 0 {
		pool, err := newCasePool(opts.parallelism)
		if err != nil {
			return nil, fmt.Errorf("create case pool: %w", err)
		}
		e.pool = pool
	}
	return e, nil
}

// defaultRegistry builds a registry (already carrying the deterministic tool
// correctness evaluator) and adds a rubric evaluator for every named rubric.
func defaultRegistry(j judge.Judge) (registry.Registry, error) {
	reg := registry.New()
	rubrics := []rubric.Rubric{
		rubric.CoachingQuality,
		rubric.StalledProjectGuidance,
		rubric.WeeklyReviewGuidance,
		rubric.NextActionQuality,
		rubric.AnswerRelevancy,
	}
	for _, r := range rubrics {
		e, err := rubric.New(r.Name, j)
		if err != nil {
			return nil, fmt.Errorf("create rubric evaluator %s: %w", r.Name, err)
		}
		if err := reg.Register(r.Name, e); err != nil {
			return nil, fmt.Errorf("register rubric evaluator %s: %w", r.Name, err)
		}
	}
	return reg, nil
}

// Evaluate loads the corpus wholesale, executes every case, and persists the
// aggregated run result. Case failures are isolated: one case failing never
// stops its siblings.
func (e *coachEvaluator) Evaluate(ctx context.Context) (*evalresult.RunResult, error) {
	cases, err := e.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test cases: %w", err)
	}
	caseResults := e.evaluateCases(ctx, cases)
	runResult := &evalresult.RunResult{
		RunID:             e.runIDSupplier(),
		Status:            evalresult.SummarizeCases(caseResults),
		CaseResults:       caseResults,
		CreationTimestamp: &epochtime.EpochTime{Time: time.Now()},
	}
	runID, err := e.resultManager.Save(ctx, runResult)
	if err != nil {
		return nil, fmt.Errorf("save run result: %w", err)
	}
	runResult.RunID = runID
	return runResult, nil
}

// Close releases owned resources.
func (e *coachEvaluator) Close() error {
	if e.pool != nil {
		e.pool.Release()
	}
	return nil
}

// evaluateCases executes every case, sequentially or through the bounded
// pool. Results land at the case's corpus index so report order never
// depends on completion order.
func (e *coachEvaluator) evaluateCases(ctx context.Context, cases []*testcase.TestCase) []*evalresult.CaseResult {
	results := make([]*evalresult.CaseResult, len(cases))
	if e.pool == nil {
		for i, tc := range cases {
			results[i] = e.evaluateCase(ctx, tc)
		}
		return results
	}
	e.pool.Run(ctx, e, cases, results)
	return results
}

// evaluateCase runs one test case end to end: validation, bridge execution,
// then every applicable metric against the same transcript.
func (e *coachEvaluator) evaluateCase(ctx context.Context, tc *testcase.TestCase) *evalresult.CaseResult {
	if tc == nil {
		return &evalresult.CaseResult{
			Status:       status.EvalStatusFailed,
			ErrorMessage: "test case is nil",
		}
	}
	result := &evalresult.CaseResult{
		CaseID:      tc.ID,
		Description: tc.Description,
	}
	// Configuration mistakes fail before the bridge is invoked so a broken
	// case never wastes an external call.
	if err := tc.Validate(); err != nil {
		result.Status = status.EvalStatusFailed
		result.ErrorMessage = err.Error()
		return result
	}
	tr, err := e.bridge.Run(ctx, tc)
	if err != nil {
		log.Errorf("case %s: bridge failed: %v", tc.ID, err)
		result.Status = status.EvalStatusFailed
		result.ErrorMessage = err.Error()
		return result
	}
	for _, evalMetric := range metricsForCase(tc) {
		result.MetricVerdicts = append(result.MetricVerdicts, e.evaluateMetric(ctx, tc, tr, evalMetric))
	}
	result.Status = evalresult.SummarizeVerdicts(result.MetricVerdicts)
	return result
}

// evaluateMetric locates the evaluator registered for the metric and runs it
// against the transcript. Evaluation errors become failed verdicts so the
// remaining metrics of the case still run.
func (e *coachEvaluator) evaluateMetric(ctx context.Context, tc *testcase.TestCase,
	tr *transcript.Transcript, evalMetric *metric.EvalMetric) *evalresult.MetricVerdict {
	verdict := &evalresult.MetricVerdict{
		MetricName: evalMetric.MetricName,
		Threshold:  evalMetric.Threshold,
	}
	metricEvaluator, err := e.registry.Get(evalMetric.MetricName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			verdict.Status = status.EvalStatusSkipped
			verdict.Reason = fmt.Sprintf("no evaluator registered for metric %s", evalMetric.MetricName)
			return verdict
		}
		verdict.Status = status.EvalStatusFailed
		verdict.Reason = err.Error()
		return verdict
	}
	evalResult, err := metricEvaluator.Evaluate(ctx, tc, tr, evalMetric)
	if err != nil {
		verdict.Status = status.EvalStatusFailed
		verdict.Reason = err.Error()
		return verdict
	}
	verdict.Score = evalResult.Score
	verdict.Status = evalResult.Status
	verdict.Reason = evalResult.Reason
	verdict.Decisions = evalResult.Decisions
	return verdict
}

// metricsForCase builds the metric list for one test case: tool correctness
// only when the toolUsage block is present, coaching quality only when the
// coachingQuality block is present, and answer relevancy always.
func metricsForCase(tc *testcase.TestCase) []*metric.EvalMetric {
	var metrics []*metric.EvalMetric
	if tc.HasToolExpectations() {
		metrics = append(metrics, &metric.EvalMetric{
			MetricName: metric.MetricToolCorrectness,
			Threshold:  metric.DefaultToolCorrectnessThreshold,
		})
	}
	if tc.HasQualityExpectations() {
		quality := tc.Expectations.CoachingQuality
		metrics = append(metrics, &metric.EvalMetric{
			MetricName: metric.MetricCoachingQuality,
			Threshold:  quality.Threshold,
			Criteria:   quality.Criteria,
		})
	}
	metrics = append(metrics, rubric.AnswerRelevancy.Metric())
	return metrics
}
