//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package coacheval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcoach/coacheval/evalresult"
	"github.com/flowcoach/coacheval/evalresult/inmemory"
	"github.com/flowcoach/coacheval/judge"
	"github.com/flowcoach/coacheval/metric"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// fakeBridge serves canned transcripts keyed by case ID and records which
// cases it was asked to run.
type fakeBridge struct {
	mu          sync.Mutex
	transcripts map[string]*transcript.Transcript
	failures    map[string]error
	calls       []string
}

func (b *fakeBridge) Run(_ context.Context, tc *testcase.TestCase) (*transcript.Transcript, error) {
	b.mu.Lock()
	b.calls = append(b.calls, tc.ID)
	b.mu.Unlock()
	if err, ok := b.failures[tc.ID]; ok {
		return nil, err
	}
	if tr, ok := b.transcripts[tc.ID]; ok {
		return tr, nil
	}
	return &transcript.Transcript{Messages: []string{"ok"}}, nil
}

func (b *fakeBridge) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// passingJudge scores everything above any sane threshold.
type passingJudge struct{}

func (passingJudge) Judge(_ context.Context, _ *judge.Request) (*judge.Verdict, error) {
	return &judge.Verdict{Score: 0.95, Reason: "meets the criteria"}, nil
}

// offlineJudge simulates missing credentials.
type offlineJudge struct{}

func (offlineJudge) Judge(_ context.Context, _ *judge.Request) (*judge.Verdict, error) {
	return nil, fmt.Errorf("no api key: %w", judge.ErrUnavailable)
}

func toolCase(id string) *testcase.TestCase {
	return &testcase.TestCase{
		ID:   id,
		Type: testcase.ConversationSingleTurn,
		Conversation: []testcase.Turn{
			{Role: testcase.RoleUser, Content: "Add 'call venue' to my party project."},
		},
		Expectations: &testcase.Expectations{
			ToolUsage: []testcase.ExpectedToolCall{{
				Name:           "add_next_action_to_project",
				RequiredParams: []string{"project_path", "action_text"},
			}},
		},
	}
}

func matchingTranscript() *transcript.Transcript {
	return &transcript.Transcript{
		Messages: []string{"Added it to your party project."},
		ToolCalls: []transcript.ToolCall{{
			Name: "add_next_action_to_project",
			Parameters: map[string]any{
				"project_path": "Projects/Party.md",
				"action_text":  "call venue",
			},
		}},
	}
}

func mustSource(t *testing.T, cases ...*testcase.TestCase) testcase.Source {
	t.Helper()
	source, err := testcase.NewStaticSource(cases...)
	require.NoError(t, err)
	return source
}

func verdictFor(t *testing.T, cr *evalresult.CaseResult, name string) *evalresult.MetricVerdict {
	t.Helper()
	for _, v := range cr.MetricVerdicts {
		if v.MetricName == name {
			return v
		}
	}
	t.Fatalf("no verdict for metric %s", name)
	return nil
}

func TestEvaluateFullPass(t *testing.T) {
	b := &fakeBridge{transcripts: map[string]*transcript.Transcript{
		"party": matchingTranscript(),
	}}
	manager := inmemory.New()
	e, err := New(b, mustSource(t, toolCase("party")),
		WithJudge(passingJudge{}),
		WithResultManager(manager),
		WithRunIDSupplier(func() string { return "run_fixed" }),
	)
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run_fixed", result.RunID)
	assert.Equal(t, status.EvalStatusPassed, result.Status)
	require.Len(t, result.CaseResults, 1)

	cr := result.CaseResults[0]
	assert.Equal(t, "party", cr.CaseID)
	assert.Equal(t, status.EvalStatusPassed, cr.Status)
	require.Len(t, cr.MetricVerdicts, 2)

	tool := verdictFor(t, cr, metric.MetricToolCorrectness)
	assert.Equal(t, 1.0, tool.Score)
	assert.True(t, tool.Successful())
	assert.NotEmpty(t, tool.Decisions)

	relevancy := verdictFor(t, cr, metric.MetricAnswerRelevancy)
	assert.Equal(t, 0.95, relevancy.Score)

	// The run is persisted before it is returned.
	saved, err := manager.Get(context.Background(), "run_fixed")
	require.NoError(t, err)
	assert.Equal(t, status.EvalStatusPassed, saved.Status)
}

func TestEvaluateCaseIsolation(t *testing.T) {
	b := &fakeBridge{
		transcripts: map[string]*transcript.Transcript{
			"good": matchingTranscript(),
		},
		failures: map[string]error{
			"broken": errors.New("runtime exited with code 3"),
		},
	}
	e, err := New(b, mustSource(t, toolCase("good"), toolCase("broken"), toolCase("also-good")),
		WithJudge(passingJudge{}),
	)
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, status.EvalStatusFailed, result.Status)
	require.Len(t, result.CaseResults, 3)

	assert.Equal(t, status.EvalStatusPassed, result.CaseResults[0].Status)
	assert.Equal(t, status.EvalStatusFailed, result.CaseResults[1].Status)
	assert.Contains(t, result.CaseResults[1].ErrorMessage, "exited with code 3")
	assert.Empty(t, result.CaseResults[1].MetricVerdicts)
	// The sibling after the failure still ran.
	assert.Equal(t, 3, b.callCount())
}

func TestEvaluateInvalidCaseSkipsBridge(t *testing.T) {
	invalid := toolCase("invalid")
	invalid.Conversation = nil

	b := &fakeBridge{}
	e, err := New(b, mustSource(t, invalid), WithJudge(passingJudge{}))
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.CaseResults, 1)
	assert.Equal(t, status.EvalStatusFailed, result.CaseResults[0].Status)
	assert.Contains(t, result.CaseResults[0].ErrorMessage, "conversation is empty")
	assert.Zero(t, b.callCount())
}

func TestEvaluateJudgeUnavailable(t *testing.T) {
	// Deterministic metrics still run and decide the case; judge-backed
	// metrics report skipped.
	b := &fakeBridge{transcripts: map[string]*transcript.Transcript{
		"party": matchingTranscript(),
	}}
	e, err := New(b, mustSource(t, toolCase("party")), WithJudge(offlineJudge{}))
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.CaseResults, 1)
	cr := result.CaseResults[0]
	assert.Equal(t, status.EvalStatusPassed, cr.Status)
	assert.Equal(t, status.EvalStatusPassed, verdictFor(t, cr, metric.MetricToolCorrectness).Status)
	assert.Equal(t, status.EvalStatusSkipped, verdictFor(t, cr, metric.MetricAnswerRelevancy).Status)
}

func TestEvaluateAllMetricsSkipped(t *testing.T) {
	// A case with no tool expectations has only judge-backed metrics; with
	// the judge offline nothing decides it.
	tc := &testcase.TestCase{
		ID:   "pure-chat",
		Type: testcase.ConversationSingleTurn,
		Conversation: []testcase.Turn{
			{Role: testcase.RoleUser, Content: "hello"},
		},
	}
	e, err := New(&fakeBridge{}, mustSource(t, tc), WithJudge(offlineJudge{}))
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.CaseResults, 1)
	assert.Equal(t, status.EvalStatusNotEvaluated, result.CaseResults[0].Status)
	assert.Equal(t, status.EvalStatusNotEvaluated, result.Status)
}

func TestEvaluatePerCaseQualityMetric(t *testing.T) {
	tc := &testcase.TestCase{
		ID:   "overwhelm",
		Type: testcase.ConversationSingleTurn,
		Conversation: []testcase.Turn{
			{Role: testcase.RoleUser, Content: "I feel overwhelmed."},
		},
		Expectations: &testcase.Expectations{
			CoachingQuality: &testcase.CoachingQuality{
				Criteria:  []string{"acknowledges the feeling"},
				Threshold: 0.9,
			},
		},
	}
	e, err := New(&fakeBridge{}, mustSource(t, tc), WithJudge(passingJudge{}))
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	cr := result.CaseResults[0]
	quality := verdictFor(t, cr, metric.MetricCoachingQuality)
	// The per-case threshold travels into the verdict.
	assert.Equal(t, 0.9, quality.Threshold)
	assert.Equal(t, status.EvalStatusPassed, quality.Status)
}

func TestEvaluateParallelKeepsOrder(t *testing.T) {
	const n = 12
	cases := make([]*testcase.TestCase, 0, n)
	transcripts := make(map[string]*transcript.Transcript, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("case-%02d", i)
		cases = append(cases, toolCase(id))
		transcripts[id] = matchingTranscript()
	}
	b := &fakeBridge{transcripts: transcripts}

	e, err := New(b, mustSource(t, cases...),
		WithJudge(passingJudge{}),
		WithParallelism(4),
	)
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, status.EvalStatusPassed, result.Status)
	require.Len(t, result.CaseResults, n)
	for i, cr := range result.CaseResults {
		assert.Equal(t, fmt.Sprintf("case-%02d", i), cr.CaseID)
	}
	assert.Equal(t, n, b.callCount())
}

func TestNewValidation(t *testing.T) {
	source := mustSource(t, toolCase("a"))
	_, err := New(nil, source)
	require.Error(t, err)
	_, err = New(&fakeBridge{}, nil)
	require.Error(t, err)
	_, err = New(&fakeBridge{}, source, WithRunIDSupplier(nil))
	require.Error(t, err)
}
