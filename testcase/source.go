//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package testcase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Source supplies an ordered corpus of test cases. The whole corpus is
// loaded before any execution begins.
type Source interface {
	// Load returns the test cases in declaration order.
	Load(ctx context.Context) ([]*TestCase, error)
}

// fileSource loads a corpus from a local JSON file containing an ordered
// array of test cases.
type fileSource struct {
	path string
}

// NewFileSource creates a Source backed by a local JSON corpus file.
func NewFileSource(path string) (Source, error) {
	if path == "" {
		return nil, errors.New("corpus path is empty")
	}
	return &fileSource{path: path}, nil
}

// Load reads and decodes the corpus file, enforcing unique case identifiers.
func (s *fileSource) Load(_ context.Context) ([]*TestCase, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", s.path, err)
	}
	var cases []*TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("unmarshal corpus %s: %w", s.path, err)
	}
	if err := checkUniqueIDs(cases); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", s.path, err)
	}
	return cases, nil
}

// staticSource serves a fixed, already constructed corpus.
type staticSource struct {
	cases []*TestCase
}

// NewStaticSource creates a Source serving the given test cases. Useful for
// embedding the harness and for tests.
func NewStaticSource(cases ...*TestCase) (Source, error) {
	if err := checkUniqueIDs(cases); err != nil {
		return nil, err
	}
	return &staticSource{cases: cases}, nil
}

// Load returns the fixed corpus.
func (s *staticSource) Load(_ context.Context) ([]*TestCase, error) {
	return s.cases, nil
}

func checkUniqueIDs(cases []*TestCase) error {
	seen := make(map[string]struct{}, len(cases))
	for i, tc := range cases {
		if tc == nil {
			return fmt.Errorf("test case %d is nil", i)
		}
		if tc.ID == "" {
			return fmt.Errorf("test case %d has empty id", i)
		}
		if _, ok := seen[tc.ID]; ok {
			return fmt.Errorf("duplicate test case id %q", tc.ID)
		}
		seen[tc.ID] = struct{}{}
	}
	return nil
}
