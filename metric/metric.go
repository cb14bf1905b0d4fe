//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package metric provides evaluation metric configuration.
package metric

// Metric names understood by the default registry.
const (
	// MetricToolCorrectness is the decision-tree tool usage metric.
	MetricToolCorrectness = "tool_correctness"
	// MetricCoachingQuality is the per-case coaching quality rubric metric.
	MetricCoachingQuality = "coaching_quality"
	// MetricAnswerRelevancy is the always-on response relevancy rubric metric.
	MetricAnswerRelevancy = "answer_relevancy"
	// MetricStalledProjectGuidance judges guidance for stalled projects.
	MetricStalledProjectGuidance = "stalled_project_guidance"
	// MetricWeeklyReviewGuidance judges weekly review workflow adherence.
	MetricWeeklyReviewGuidance = "weekly_review_guidance"
	// MetricNextActionQuality judges suggested next action quality.
	MetricNextActionQuality = "next_action_quality"
)

// Default thresholds.
const (
	// DefaultToolCorrectnessThreshold is the pass threshold for the
	// tool correctness metric.
	DefaultToolCorrectnessThreshold = 0.8
	// DefaultAnswerRelevancyThreshold is the pass threshold for the answer
	// relevancy metric.
	DefaultAnswerRelevancyThreshold = 0.7
)

// EvalMetric configures one metric evaluation for a test case.
type EvalMetric struct {
	// MetricName identifies the metric.
	MetricName string `json:"metricName"`
	// Threshold is the minimum passing score in [0, 1].
	Threshold float64 `json:"threshold"`
	// Criteria carries rubric criteria descriptions for judge-backed
	// metrics. Deterministic metrics ignore it.
	Criteria []string `json:"criteria,omitempty"`
}
