//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package openai provides a Judge implementation backed by an OpenAI-compatible API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/flowcoach/coacheval/judge"
)

const (
	// DefaultModel is the judge model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// apiKeyEnv is the environment variable the API key is read from.
	apiKeyEnv = "OPENAI_API_KEY"
	// baseURLEnv is the environment variable the base URL is read from.
	baseURLEnv = "OPENAI_BASE_URL"
)

const systemPrompt = `You are an expert evaluator of AI coaching conversations.
Judge the coach's response against the stated criteria and reply with a JSON
object of the form {"score": <float between 0.0 and 1.0>, "reason": "<one
sentence explanation>"}. Reply with the JSON object only.`

// Judge grades responses through an OpenAI-compatible chat completion API.
type Judge struct {
	client openai.Client
	model  string
	apiKey string
}

// Option configures the Judge.
type Option func(*Judge)

// WithModel sets the judge model name.
func WithModel(model string) Option {
	return func(j *Judge) { j.model = model }
}

// WithAPIKey sets the API key, overriding the environment.
func WithAPIKey(apiKey string) Option {
	return func(j *Judge) { j.apiKey = apiKey }
}

// New creates an OpenAI-backed judge. Credentials come from the environment
// unless overridden; a missing key does not fail construction — Judge calls
// report judge.ErrUnavailable instead so callers can skip gracefully.
func New(opt ...Option) *Judge {
	j := &Judge{model: DefaultModel}
	for _, o := range opt {
		o(j)
	}
	if j.apiKey == "" {
		j.apiKey = os.Getenv(apiKeyEnv)
	}
	clientOpts := []openaiopt.RequestOption{}
	if j.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(j.apiKey))
	}
	if baseURL := os.Getenv(baseURLEnv); baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(baseURL))
	}
	j.client = openai.NewClient(clientOpts...)
	return j
}

// Available reports whether the judge has credentials to operate.
func (j *Judge) Available() bool {
	return j.apiKey != ""
}

// Judge grades the request through the chat completion API.
func (j *Judge) Judge(ctx context.Context, req *judge.Request) (*judge.Verdict, error) {
	if req == nil {
		return nil, errors.New("judge request is nil")
	}
	if !j.Available() {
		return nil, fmt.Errorf("%s is not set: %w", apiKeyEnv, judge.ErrUnavailable)
	}
	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(req)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("judge completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("judge completion returned no choices")
	}
	verdict, err := parseVerdict(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse judge verdict: %w", err)
	}
	return verdict, nil
}

// buildPrompt renders the grading request. The criteria, conversation input
// and actual output are forwarded verbatim.
func buildPrompt(req *judge.Request) string {
	var b strings.Builder
	b.WriteString("Criteria:\n")
	for _, criterion := range req.Criteria {
		b.WriteString("- ")
		b.WriteString(criterion)
		b.WriteString("\n")
	}
	b.WriteString("\nConversation:\n")
	b.WriteString(req.Input)
	b.WriteString("\n\nCoach response under evaluation:\n")
	if req.Output == "" {
		b.WriteString("(no response produced)")
	} else {
		b.WriteString(req.Output)
	}
	return b.String()
}

// verdictJSON is the wire shape the judge model is instructed to reply with.
type verdictJSON struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// parseVerdict decodes the model reply. Models occasionally wrap the JSON in
// a code fence or surrounding prose, so the first top-level object is
// extracted before decoding. Scores are clamped to [0, 1].
func parseVerdict(content string) (*judge.Verdict, error) {
	body := extractJSONObject(content)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in judge reply: %s", content)
	}
	var raw verdictJSON
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal judge reply: %w", err)
	}
	return &judge.Verdict{
		Score:  clamp01(raw.Score),
		Reason: raw.Reason,
	}, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// or an empty string if none is found.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Ensure interface compliance.
var _ judge.Judge = (*Judge)(nil)
