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

	"github.com/panjf2000/ants/v2"

	"github.com/flowcoach/coacheval/evalresult"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
)

type caseEvalParam struct {
	idx     int
	ctx     context.Context
	tc      *testcase.TestCase
	eval    *coachEvaluator
	results []*evalresult.CaseResult
	wg      *sync.WaitGroup
}

func (p *caseEvalParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.tc = nil
	p.eval = nil
	p.results = nil
	p.wg = nil
}

var caseEvalParamPool = &sync.Pool{
	New: func() any { return new(caseEvalParam) },
}

// casePool fans test cases out to a bounded set of workers.
type casePool struct {
	pool *ants.PoolWithFunc
}

func newCasePool(size int) (*casePool, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*caseEvalParam)
		if !ok {
			panic("case eval pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			caseEvalParamPool.Put(param)
		}()
		param.results[param.idx] = param.eval.evaluateCase(param.ctx, param.tc)
	})
	if err != nil {
		return nil, fmt.Errorf("create case eval pool: %w", err)
	}
	return &casePool{pool: pool}, nil
}

// Run evaluates every case on the pool and blocks until all finish.
// results must have the same length as cases; each verdict lands at the
// case's index.
func (p *casePool) Run(ctx context.Context, eval *coachEvaluator,
	cases []*testcase.TestCase, results []*evalresult.CaseResult) {
	var wg sync.WaitGroup
	for i, tc := range cases {
		param := caseEvalParamPool.Get().(*caseEvalParam)
		param.idx = i
		param.ctx = ctx
		param.tc = tc
		param.eval = eval
		param.results = results
		param.wg = &wg
		wg.Add(1)
		if err := p.pool.Invoke(param); err != nil {
			wg.Done()
			param.reset()
			caseEvalParamPool.Put(param)
			results[i] = &evalresult.CaseResult{
				CaseID:       tc.ID,
				Description:  tc.Description,
				Status:       status.EvalStatusFailed,
				ErrorMessage: fmt.Sprintf("submit case to pool: %v", err),
			}
		}
	}
	wg.Wait()
}

// Release frees the underlying workers.
func (p *casePool) Release() {
	p.pool.Release()
}
