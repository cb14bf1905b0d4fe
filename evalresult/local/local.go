//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage implementation for evaluation results.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/flowcoach/coacheval/evalresult"
)

const (
	defaultBaseDir        = "./results"
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
	resultFileExtension   = ".json"
)

// manager implements the evalresult.Manager interface using local file storage.
type manager struct {
	mu      sync.Mutex
	baseDir string
}

// Option configures the manager.
type Option func(*manager)

// WithBaseDir sets the directory run result files are stored in.
func WithBaseDir(baseDir string) Option {
	return func(m *manager) { m.baseDir = baseDir }
}

// New creates a local file evaluation result manager.
func New(opt ...Option) evalresult.Manager {
	m := &manager{baseDir: defaultBaseDir}
	for _, o := range opt {
		o(m)
	}
	return m
}

// Save stores a run result to a local file, assigning a run ID if absent.
// The write is atomic: a temp file is renamed over the final path.
func (m *manager) Save(_ context.Context, result *evalresult.RunResult) (string, error) {
	if result == nil {
		return "", errors.New("result is nil")
	}
	if result.RunID == "" {
		result.RunID = fmt.Sprintf("run_%s", uuid.New().String())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.MkdirAll(m.baseDir, defaultDirPermission); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run result %s: %w", result.RunID, err)
	}
	path := m.resultPath(result.RunID)
	tmp := path + defaultTempFileSuffix
	if err := os.WriteFile(tmp, data, defaultFilePermission); err != nil {
		return "", fmt.Errorf("write run result %s: %w", result.RunID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("store run result %s: %w", result.RunID, err)
	}
	return result.RunID, nil
}

// Get retrieves a run result by run ID.
func (m *manager) Get(_ context.Context, runID string) (*evalresult.RunResult, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := os.ReadFile(m.resultPath(runID))
	if err != nil {
		return nil, fmt.Errorf("load run result %s: %w", runID, err)
	}
	var result evalresult.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal run result %s: %w", runID, err)
	}
	return &result, nil
}

// List returns all stored run IDs sorted lexicographically.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list results dir: %w", err)
	}
	runIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultFileExtension) {
			continue
		}
		runIDs = append(runIDs, strings.TrimSuffix(entry.Name(), resultFileExtension))
	}
	sort.Strings(runIDs)
	return runIDs, nil
}

func (m *manager) resultPath(runID string) string {
	return filepath.Join(m.baseDir, runID+resultFileExtension)
}
