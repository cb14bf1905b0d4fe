//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory implementation for evaluation results.
package inmemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flowcoach/coacheval/evalresult"
)

// manager implements evalresult.Manager backed by process memory.
// Stored results are deep-copied so later mutation by the caller cannot
// corrupt the store.
type manager struct {
	mu      sync.RWMutex
	results map[string]*evalresult.RunResult
}

// New creates an in-memory evaluation result manager.
func New() evalresult.Manager {
	return &manager{results: make(map[string]*evalresult.RunResult)}
}

// Save stores a run result, assigning a run ID if absent.
func (m *manager) Save(_ context.Context, result *evalresult.RunResult) (string, error) {
	if result == nil {
		return "", errors.New("result is nil")
	}
	if result.RunID == "" {
		result.RunID = fmt.Sprintf("run_%s", uuid.New().String())
	}
	stored, err := clone(result)
	if err != nil {
		return "", fmt.Errorf("clone run result %s: %w", result.RunID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.RunID] = stored
	return result.RunID, nil
}

// Get retrieves a run result by run ID.
func (m *manager) Get(_ context.Context, runID string) (*evalresult.RunResult, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.results[runID]
	if !ok {
		return nil, fmt.Errorf("run result %s not found", runID)
	}
	return clone(result)
}

// List returns all stored run IDs sorted lexicographically.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runIDs := make([]string, 0, len(m.results))
	for runID := range m.results {
		runIDs = append(runIDs, runID)
	}
	sort.Strings(runIDs)
	return runIDs, nil
}

// clone deep-copies a run result through its JSON representation.
func clone(result *evalresult.RunResult) (*evalresult.RunResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var copied evalresult.RunResult
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}
