//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package evalresult

import "github.com/flowcoach/coacheval/status"

// SummarizeVerdicts reduces the metric verdicts of one case to a single
// status. Any failed verdict fails the case; a case whose verdicts were all
// skipped is not evaluated rather than failed, so runs without judge
// credentials stay green on their deterministic metrics.
func SummarizeVerdicts(verdicts []*MetricVerdict) status.EvalStatus {
	if len(verdicts) == 0 {
		return status.EvalStatusNotEvaluated
	}
	passed := 0
	for _, verdict := range verdicts {
		switch verdict.Status {
		case status.EvalStatusFailed:
			return status.EvalStatusFailed
		case status.EvalStatusPassed:
			passed++
		}
	}
	if passed > 0 {
		return status.EvalStatusPassed
	}
	return status.EvalStatusNotEvaluated
}

// SummarizeCases reduces per-case statuses to the overall run status.
// Any failed case fails the run; a run with no evaluated case at all is
// reported as not evaluated.
func SummarizeCases(results []*CaseResult) status.EvalStatus {
	if len(results) == 0 {
		return status.EvalStatusNotEvaluated
	}
	evaluated := false
	for _, result := range results {
		switch result.Status {
		case status.EvalStatusFailed:
			return status.EvalStatusFailed
		case status.EvalStatusPassed:
			evaluated = true
		}
	}
	if evaluated {
		return status.EvalStatusPassed
	}
	return status.EvalStatusNotEvaluated
}
