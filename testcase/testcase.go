//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package testcase provides the data contract for scripted coach
// conversations and their expectations.
package testcase

import (
	"fmt"
	"strings"
)

// ConversationType describes how many turns a scripted conversation has.
type ConversationType string

const (
	// ConversationSingleTurn is a conversation with a single user turn.
	ConversationSingleTurn ConversationType = "single-turn"
	// ConversationMultiTurn is a conversation spanning multiple turns.
	ConversationMultiTurn ConversationType = "multi-turn"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single scripted conversation turn.
type Turn struct {
	// Role is the speaker, either user or assistant.
	Role string `json:"role"`
	// Content is the text content of the turn.
	Content string `json:"content"`
}

// ExpectedToolCall declares one tool the coach is expected to invoke and the
// parameter names that must be present on the matching call. Parameter
// values are never checked, only key presence.
type ExpectedToolCall struct {
	// Name is the tool name.
	Name string `json:"name"`
	// RequiredParams lists the parameter names that must appear on the call.
	RequiredParams []string `json:"requiredParams,omitempty"`
}

// CoachingQuality declares rubric criteria the coach response must satisfy,
// judged by an external model-grading capability.
type CoachingQuality struct {
	// Criteria lists the rubric criteria descriptions.
	Criteria []string `json:"criteria"`
	// Threshold is the minimum passing score in [0, 1].
	Threshold float64 `json:"threshold"`
}

// Expectations is the expectations block of a test case. Both fields are
// optional; a nil ToolUsage means no tool expectation is configured, while an
// empty non-nil list means the coach is expected to call no tools at all.
type Expectations struct {
	// ToolUsage declares expected tool calls.
	ToolUsage []ExpectedToolCall `json:"toolUsage,omitempty"`
	// CoachingQuality declares the rubric expectation.
	CoachingQuality *CoachingQuality `json:"coachingQuality,omitempty"`
}

// TestCase is one scripted conversation with its expectations. The vault
// context snapshot is passed through to the coach runtime unchanged and is
// never interpreted by the harness.
type TestCase struct {
	// ID uniquely identifies this test case.
	ID string `json:"id"`
	// Description is a human-readable description.
	Description string `json:"description,omitempty"`
	// Type is the conversation type.
	Type ConversationType `json:"type"`
	// Conversation contains the scripted turns in order.
	Conversation []Turn `json:"conversation"`
	// VaultContext is the opaque vault snapshot handed to the coach runtime.
	VaultContext map[string]any `json:"vaultContext,omitempty"`
	// Expectations is the expectations block.
	Expectations *Expectations `json:"expectations,omitempty"`
}

// ConversationText renders the scripted conversation as "role: content"
// lines joined by newlines, in turn order. This is the input text handed to
// rubric judging.
func (tc *TestCase) ConversationText() string {
	lines := make([]string, 0, len(tc.Conversation))
	for _, turn := range tc.Conversation {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return strings.Join(lines, "\n")
}

// HasToolExpectations reports whether the toolUsage expectation block is
// present. An empty non-nil list still counts as present: it asserts that
// the coach must not call any tools.
func (tc *TestCase) HasToolExpectations() bool {
	return tc.Expectations != nil && tc.Expectations.ToolUsage != nil
}

// HasQualityExpectations reports whether the coachingQuality expectation
// block is present.
func (tc *TestCase) HasQualityExpectations() bool {
	return tc.Expectations != nil && tc.Expectations.CoachingQuality != nil
}

// Validate checks the test case for configuration mistakes. All violations
// are reported as *ConfigError so that setup failures can be told apart from
// execution failures before the coach runtime is ever invoked.
func (tc *TestCase) Validate() error {
	if tc.ID == "" {
		return &ConfigError{Reason: "test case id is empty"}
	}
	if tc.Type != ConversationSingleTurn && tc.Type != ConversationMultiTurn {
		return &ConfigError{CaseID: tc.ID, Reason: fmt.Sprintf("unknown conversation type %q", tc.Type)}
	}
	if len(tc.Conversation) == 0 {
		return &ConfigError{CaseID: tc.ID, Reason: "conversation is empty"}
	}
	for i, turn := range tc.Conversation {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return &ConfigError{CaseID: tc.ID, Reason: fmt.Sprintf("turn %d has unknown role %q", i, turn.Role)}
		}
	}
	if tc.Expectations == nil {
		return nil
	}
	for i, expected := range tc.Expectations.ToolUsage {
		if expected.Name == "" {
			return &ConfigError{CaseID: tc.ID, Reason: fmt.Sprintf("expected tool %d has empty name", i)}
		}
		for _, param := range expected.RequiredParams {
			if param == "" {
				return &ConfigError{CaseID: tc.ID, Reason: fmt.Sprintf("expected tool %q has empty required parameter name", expected.Name)}
			}
		}
	}
	if quality := tc.Expectations.CoachingQuality; quality != nil {
		if len(quality.Criteria) == 0 {
			return &ConfigError{CaseID: tc.ID, Reason: "coaching quality criteria list is empty"}
		}
		if quality.Threshold < 0 || quality.Threshold > 1 {
			return &ConfigError{CaseID: tc.ID, Reason: fmt.Sprintf("coaching quality threshold %v is outside [0, 1]", quality.Threshold)}
		}
	}
	return nil
}

// ConfigError reports a malformed test case or expectation block. It is
// raised during setup, before the bridge is invoked, so that a broken case
// never wastes an external call.
type ConfigError struct {
	// CaseID identifies the offending test case when known.
	CaseID string
	// Reason describes the configuration mistake.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.CaseID == "" {
		return fmt.Sprintf("test case configuration: %s", e.Reason)
	}
	return fmt.Sprintf("test case %s configuration: %s", e.CaseID, e.Reason)
}
