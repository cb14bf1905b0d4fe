//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package coacheval

import (
	"github.com/google/uuid"

	"github.com/flowcoach/coacheval/evalresult"
	"github.com/flowcoach/coacheval/evaluator/registry"
	"github.com/flowcoach/coacheval/judge"
)

// options holds the configuration for the evaluator facade.
type options struct {
	judge         judge.Judge
	registry      registry.Registry
	resultManager evalresult.Manager
	parallelism   int
	runIDSupplier func() string
}

// Option configures the evaluator facade.
type Option func(*options)

// WithJudge sets the judge capability used by rubric metrics.
func WithJudge(j judge.Judge) Option {
	return func(o *options) { o.judge = j }
}

// WithRegistry sets the evaluator registry, replacing the default one.
func WithRegistry(r registry.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithResultManager sets the run result storage.
func WithResultManager(m evalresult.Manager) Option {
	return func(o *options) { o.resultManager = m }
}

// WithParallelism bounds concurrent case execution. Zero or negative keeps
// the default fully sequential schedule. Reported results keep corpus order
// either way.
func WithParallelism(parallelism int) Option {
	return func(o *options) { o.parallelism = parallelism }
}

// WithRunIDSupplier sets the run ID generator.
func WithRunIDSupplier(supplier func() string) Option {
	return func(o *options) { o.runIDSupplier = supplier }
}

func newOptions(opt ...Option) *options {
	opts := &options{
		runIDSupplier: func() string { return uuid.New().String() },
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}
