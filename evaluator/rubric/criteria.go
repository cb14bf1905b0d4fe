//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package rubric

import "github.com/flowcoach/coacheval/metric"

// Rubric is a named judging rubric: criteria text plus a pass threshold.
// All rubrics share one evaluation contract and differ only in these fields.
type Rubric struct {
	// Name is the metric name the rubric reports under.
	Name string
	// Criteria lists the rubric criteria descriptions.
	Criteria []string
	// Threshold is the minimum passing score in [0, 1].
	Threshold float64
}

// Metric converts the rubric into a metric configuration.
func (r Rubric) Metric() *metric.EvalMetric {
	return &metric.EvalMetric{
		MetricName: r.Name,
		Threshold:  r.Threshold,
		Criteria:   r.Criteria,
	}
}

// Predefined rubrics for common coaching scenarios.
var (
	// CoachingQuality judges overall GTD coaching quality. Per-case criteria
	// and threshold from the test case expectations usually override it.
	CoachingQuality = Rubric{
		Name: metric.MetricCoachingQuality,
		Criteria: []string{
			"Adherence to GTD principles like clear next actions and defined project outcomes",
			"Specific, actionable guidance rather than vague suggestions",
			"Helpfulness for maintaining the user's GTD system",
			"Supportive and encouraging tone",
		},
		Threshold: 0.7,
	}

	// StalledProjectGuidance judges guidance given for stalled projects.
	StalledProjectGuidance = Rubric{
		Name: metric.MetricStalledProjectGuidance,
		Criteria: []string{
			"Correctly identifies the project as stalled",
			"Suggests specific, actionable next steps",
			"Follows GTD principles for next actions (action verb, clear context, completable)",
		},
		Threshold: 0.8,
	}

	// WeeklyReviewGuidance judges adherence to the weekly review workflow.
	WeeklyReviewGuidance = Rubric{
		Name: metric.MetricWeeklyReviewGuidance,
		Criteria: []string{
			"Follows standard weekly review workflow (inbox, projects, next actions, someday)",
			"Maintains context across conversation turns",
			"Provides actionable guidance at each step",
		},
		Threshold: 0.75,
	}

	// NextActionQuality judges the quality of suggested next actions.
	NextActionQuality = Rubric{
		Name: metric.MetricNextActionQuality,
		Criteria: []string{
			"Starts with an action verb",
			"Is specific and concrete",
			"Includes relevant context (who/where/what)",
			"Is completable in one session",
			"Avoids vague language",
		},
		Threshold: 0.8,
	}

	// AnswerRelevancy judges whether the response addresses the user's input.
	// It is included for every test case.
	AnswerRelevancy = Rubric{
		Name: metric.MetricAnswerRelevancy,
		Criteria: []string{
			"The response directly addresses the user's request",
			"The response stays on topic for the conversation",
		},
		Threshold: metric.DefaultAnswerRelevancyThreshold,
	}
)
