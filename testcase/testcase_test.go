//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package testcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCase() *TestCase {
	return &TestCase{
		ID:   "stalled-project-check",
		Type: ConversationSingleTurn,
		Conversation: []Turn{
			{Role: RoleUser, Content: "Which of my projects are stalled?"},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validCase().Validate())

	tc := validCase()
	tc.ID = ""
	err := tc.Validate()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	tc = validCase()
	tc.Type = "group-chat"
	err = tc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group-chat")

	tc = validCase()
	tc.Conversation = nil
	require.Error(t, tc.Validate())

	tc = validCase()
	tc.Conversation[0].Role = "system"
	require.Error(t, tc.Validate())
}

func TestValidateExpectations(t *testing.T) {
	tc := validCase()
	tc.Expectations = &Expectations{
		ToolUsage: []ExpectedToolCall{{Name: ""}},
	}
	require.Error(t, tc.Validate())

	tc.Expectations = &Expectations{
		ToolUsage: []ExpectedToolCall{{Name: "get_next_actions", RequiredParams: []string{""}}},
	}
	require.Error(t, tc.Validate())

	tc.Expectations = &Expectations{
		CoachingQuality: &CoachingQuality{Criteria: nil, Threshold: 0.7},
	}
	require.Error(t, tc.Validate())

	tc.Expectations = &Expectations{
		CoachingQuality: &CoachingQuality{Criteria: []string{"asks a question"}, Threshold: 1.5},
	}
	require.Error(t, tc.Validate())

	tc.Expectations = &Expectations{
		ToolUsage:       []ExpectedToolCall{{Name: "get_next_actions", RequiredParams: []string{"project_path"}}},
		CoachingQuality: &CoachingQuality{Criteria: []string{"asks a question"}, Threshold: 0.7},
	}
	require.NoError(t, tc.Validate())
}

func TestHasExpectations(t *testing.T) {
	tc := validCase()
	assert.False(t, tc.HasToolExpectations())
	assert.False(t, tc.HasQualityExpectations())

	// An empty non-nil list asserts that no tools may be called, which is
	// still an expectation.
	tc.Expectations = &Expectations{ToolUsage: []ExpectedToolCall{}}
	assert.True(t, tc.HasToolExpectations())
	assert.False(t, tc.HasQualityExpectations())

	tc.Expectations = &Expectations{
		CoachingQuality: &CoachingQuality{Criteria: []string{"is supportive"}, Threshold: 0.7},
	}
	assert.False(t, tc.HasToolExpectations())
	assert.True(t, tc.HasQualityExpectations())
}

func TestConversationText(t *testing.T) {
	tc := &TestCase{
		ID:   "weekly-review",
		Type: ConversationMultiTurn,
		Conversation: []Turn{
			{Role: RoleUser, Content: "Help me with my weekly review."},
			{Role: RoleAssistant, Content: "Sure, let's start with your projects."},
			{Role: RoleUser, Content: "Sounds good."},
		},
	}
	want := "user: Help me with my weekly review.\n" +
		"assistant: Sure, let's start with your projects.\n" +
		"user: Sounds good."
	assert.Equal(t, want, tc.ConversationText())
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{CaseID: "case-1", Reason: "conversation is empty"}
	assert.Contains(t, err.Error(), "case-1")
	assert.Contains(t, err.Error(), "conversation is empty")

	err = &ConfigError{Reason: "test case id is empty"}
	assert.NotContains(t, err.Error(), "case-1")
}
