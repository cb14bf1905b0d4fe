//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package toolcorrectness provides the decision-tree tool usage evaluator.
//
// The score is computed by three ordered, short-circuiting decision nodes:
//
//  1. tool_decision — were tools called exactly when expected?
//  2. tool_types    — does the set of actual tool names equal the expected set?
//  3. tool_params   — does every required parameter appear on the matching call?
//
// Each node that fails pins the score to a fixed tier (0.0, 0.4, 0.7); a
// full pass scores 1.0. The evaluated nodes are retained in the result's
// decision trace so a reviewer can see exactly which node failed.
package toolcorrectness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/flowcoach/coacheval/evaluator"
	"github.com/flowcoach/coacheval/metric"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
	"github.com/flowcoach/coacheval/transcript"
)

// Decision node names, in evaluation order.
const (
	NodeToolDecision = "tool_decision"
	NodeToolTypes    = "tool_types"
	NodeToolParams   = "tool_params"
)

// Score tiers produced by the decision tree.
const (
	scorePresenceMismatch = 0.0
	scoreWrongTools       = 0.4
	scoreWrongParams      = 0.7
	scorePerfect          = 1.0
)

// toolCorrectnessEvaluator is a stateless decision-tree evaluator.
type toolCorrectnessEvaluator struct {
}

// New creates a new tool correctness evaluator.
func New() evaluator.Evaluator {
	return &toolCorrectnessEvaluator{}
}

// Name returns the name of this evaluator.
func (e *toolCorrectnessEvaluator) Name() string {
	return metric.MetricToolCorrectness
}

// Description returns a description of what this evaluator does.
func (e *toolCorrectnessEvaluator) Description() string {
	return "Evaluates whether the coach called the correct tools with the correct parameters"
}

// Evaluate walks the decision tree over the transcript's tool calls.
func (e *toolCorrectnessEvaluator) Evaluate(_ context.Context, tc *testcase.TestCase,
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
	var expected []testcase.ExpectedToolCall
	if tc.Expectations != nil {
		expected = tc.Expectations.ToolUsage
	}
	actual := tr.ToolCalls

	// Node 1: were tools called exactly when expected?
	calledAny := len(actual) > 0
	expectedAny := len(expected) > 0
	if calledAny != expectedAny {
		return e.result(scorePresenceMismatch, evalMetric, presenceReason(calledAny),
			[]evaluator.Decision{{Node: NodeToolDecision, Passed: false}}), nil
	}
	if !expectedAny {
		// No tools expected or called. Trivial pass with an empty trace.
		return e.result(scorePerfect, evalMetric, "no tools expected and none called", nil), nil
	}

	// Node 2: correct tool types?
	correctTools := sameToolSets(expected, actual)
	decisions := []evaluator.Decision{{Node: NodeToolTypes, Passed: correctTools}}
	if !correctTools {
		reason := fmt.Sprintf("expected tool set %v does not match actual tool set %v",
			expectedNames(expected), actualNames(actual))
		return e.result(scoreWrongTools, evalMetric, reason, decisions), nil
	}

	// Node 3: correct parameters?
	missing := missingParams(expected, actual)
	decisions = append(decisions, evaluator.Decision{Node: NodeToolParams, Passed: missing == ""})
	if missing != "" {
		return e.result(scoreWrongParams, evalMetric, missing, decisions), nil
	}
	return e.result(scorePerfect, evalMetric, "all expected tools called with required parameters", decisions), nil
}

func (e *toolCorrectnessEvaluator) result(score float64, evalMetric *metric.EvalMetric,
	reason string, decisions []evaluator.Decision) *evaluator.Result {
	evalStatus := status.EvalStatusFailed
	if score >= evalMetric.Threshold {
		evalStatus = status.EvalStatusPassed
	}
	return &evaluator.Result{
		Score:     score,
		Status:    evalStatus,
		Reason:    reason,
		Decisions: decisions,
	}
}

func presenceReason(calledAny bool) string {
	if calledAny {
		return "tools were called but none were expected"
	}
	return "tools were expected but none were called"
}

// sameToolSets compares expected and actual tool names as pure sets: order
// and duplicate multiplicity are ignored.
func sameToolSets(expected []testcase.ExpectedToolCall, actual []transcript.ToolCall) bool {
	expectedSet := make(map[string]struct{}, len(expected))
	for _, tool := range expected {
		expectedSet[tool.Name] = struct{}{}
	}
	actualSet := make(map[string]struct{}, len(actual))
	for _, call := range actual {
		actualSet[call.Name] = struct{}{}
	}
	if len(expectedSet) != len(actualSet) {
		return false
	}
	for name := range expectedSet {
		if _, ok := actualSet[name]; !ok {
			return false
		}
	}
	return true
}

// missingParams checks that every required parameter is present as a key on
// the first actual call with a matching name. It returns an empty string
// when all parameters are present, otherwise a description of the first
// violation found.
func missingParams(expected []testcase.ExpectedToolCall, actual []transcript.ToolCall) string {
	for _, expectedTool := range expected {
		actualCall := firstCallNamed(actual, expectedTool.Name)
		if actualCall == nil {
			return fmt.Sprintf("no call to expected tool %q", expectedTool.Name)
		}
		for _, param := range expectedTool.RequiredParams {
			if _, ok := actualCall.Parameters[param]; !ok {
				return fmt.Sprintf("required parameter %q missing from call to %q", param, expectedTool.Name)
			}
		}
	}
	return ""
}

// firstCallNamed returns the first actual call with the given name.
// First match wins when a tool name appears more than once.
func firstCallNamed(calls []transcript.ToolCall, name string) *transcript.ToolCall {
	for i := range calls {
		if calls[i].Name == name {
			return &calls[i]
		}
	}
	return nil
}

func expectedNames(expected []testcase.ExpectedToolCall) string {
	names := make([]string, 0, len(expected))
	for _, tool := range expected {
		names = append(names, tool.Name)
	}
	return sortedSet(names)
}

func actualNames(actual []transcript.ToolCall) string {
	names := make([]string, 0, len(actual))
	for _, call := range actual {
		names = append(names, call.Name)
	}
	return sortedSet(names)
}

func sortedSet(names []string) string {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	unique := make([]string, 0, len(set))
	for name := range set {
		unique = append(unique, name)
	}
	sort.Strings(unique)
	return "[" + strings.Join(unique, " ") + "]"
}
