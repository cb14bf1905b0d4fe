//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcoach/coacheval/judge"
)

func TestParseVerdict(t *testing.T) {
	verdict, err := parseVerdict(`{"score": 0.85, "reason": "clear and supportive"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.85, verdict.Score)
	assert.Equal(t, "clear and supportive", verdict.Reason)
}

func TestParseVerdictFenced(t *testing.T) {
	reply := "Here is my judgment:\n```json\n{\"score\": 0.6, \"reason\": \"misses the {key} point\"}\n```\nHope that helps."
	verdict, err := parseVerdict(reply)
	require.NoError(t, err)
	assert.Equal(t, 0.6, verdict.Score)
	assert.Equal(t, "misses the {key} point", verdict.Reason)
}

func TestParseVerdictClamps(t *testing.T) {
	verdict, err := parseVerdict(`{"score": 8.5, "reason": "model returned a ten-point scale"}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, verdict.Score)

	verdict, err = parseVerdict(`{"score": -0.2, "reason": "negative"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, verdict.Score)
}

func TestParseVerdictErrors(t *testing.T) {
	_, err := parseVerdict("the coach did fine")
	require.Error(t, err)

	_, err = parseVerdict(`{"score": "high"}`)
	require.Error(t, err)

	// Unbalanced brace never closes.
	_, err = parseVerdict(`{"score": 0.5, "reason": "oops`)
	require.Error(t, err)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": "b}"}`, extractJSONObject(`noise {"a": "b}"} trailing`))
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject(`{"a": {"b": 1}} {"second": 2}`))
	assert.Equal(t, `{"a": "\"}"}`, extractJSONObject(`{"a": "\"}"}`))
	assert.Equal(t, "", extractJSONObject("no object here"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(&judge.Request{
		Criteria: []string{"asks a clarifying question", "stays on topic"},
		Input:    "user: I feel stuck.",
		Output:   "What is the smallest next step?",
	})
	assert.Contains(t, prompt, "- asks a clarifying question")
	assert.Contains(t, prompt, "- stays on topic")
	assert.Contains(t, prompt, "user: I feel stuck.")
	assert.Contains(t, prompt, "What is the smallest next step?")

	prompt = buildPrompt(&judge.Request{
		Criteria: []string{"responds at all"},
		Input:    "user: hello",
	})
	assert.Contains(t, prompt, "(no response produced)")
}

func TestJudgeUnavailableWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	j := New()
	assert.False(t, j.Available())

	_, err := j.Judge(context.Background(), &judge.Request{
		Criteria: []string{"is supportive"},
		Input:    "user: hi",
		Output:   "hello",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, judge.ErrUnavailable))
}

func TestJudgeNilRequest(t *testing.T) {
	j := New(WithAPIKey("test-key"))
	assert.True(t, j.Available())
	_, err := j.Judge(context.Background(), nil)
	require.Error(t, err)
}
