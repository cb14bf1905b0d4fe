//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Package transcript defines the structured record produced by one execution
// of a test case against the coach runtime.
package transcript

import (
	"encoding/json"
	"fmt"
)

// ToolCall is a structured record of the coach invoking a named capability
// with named parameters. Parameter values are opaque to the harness; only
// key presence is ever inspected.
type ToolCall struct {
	// Name is the tool name.
	Name string `json:"name"`
	// Parameters maps parameter names to their values.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Transcript is the ordered record of messages and tool calls emitted during
// one run of a test case. It is produced exactly once per execution and
// discarded after scoring.
type Transcript struct {
	// Messages contains the assistant messages in emission order.
	Messages []string `json:"messages"`
	// ToolCalls contains the tool calls in emission order.
	ToolCalls []ToolCall `json:"toolCalls"`
}

// FinalOutput returns the last emitted message, or the empty string if the
// coach produced no messages.
func (t *Transcript) FinalOutput() string {
	if len(t.Messages) == 0 {
		return ""
	}
	return t.Messages[len(t.Messages)-1]
}

// transcriptJSON mirrors Transcript with pointer slices so that absent keys
// can be told apart from empty lists during decoding.
type transcriptJSON struct {
	Messages  *[]string   `json:"messages"`
	ToolCalls *[]ToolCall `json:"toolCalls"`
}

// Decode parses data as a Transcript. Both the messages list and the tool
// call list must be present, though either may be empty.
func Decode(data []byte) (*Transcript, error) {
	var raw transcriptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	if raw.Messages == nil {
		return nil, fmt.Errorf("transcript missing required field %q", "messages")
	}
	if raw.ToolCalls == nil {
		return nil, fmt.Errorf("transcript missing required field %q", "toolCalls")
	}
	return &Transcript{
		Messages:  *raw.Messages,
		ToolCalls: *raw.ToolCalls,
	}, nil
}
