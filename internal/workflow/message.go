package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
	RoleTool   Role = "tool"
)

// ToolCall is a structured action request embedded in an AI message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is a single conversation entry. AI messages may carry tool calls;
// tool results carry the originating call id and tool name.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Human creates a human-authored message.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AI creates a model-authored message with optional tool calls.
func AI(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: calls}
}

// System creates a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ToolResult creates a message carrying the output of a tool call.
func ToolResult(callID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, Name: name}
}

// ToolCall returns the first tool call of the message, if any.
func (m Message) ToolCall() (ToolCall, bool) {
	if len(m.ToolCalls) == 0 {
		return ToolCall{}, false
	}
	return m.ToolCalls[0], true
}

// String renders the message in the uniform transcript format.
func (m Message) String() string {
	switch m.Role {
	case RoleHuman:
		return "Human: " + m.Content
	case RoleAI:
		if len(m.ToolCalls) == 0 {
			return "AI: " + m.Content
		}
		calls := make([]string, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			args, _ := json.Marshal(tc.Arguments)
			calls[i] = fmt.Sprintf("%s(%s)", tc.Name, args)
		}
		return fmt.Sprintf("AI: %s [Tool calls: %s]", m.Content, strings.Join(calls, ", "))
	case RoleSystem:
		return "System: " + m.Content
	case RoleTool:
		return fmt.Sprintf("Tool[%s]: %s", m.Name, m.Content)
	default:
		return fmt.Sprintf("%s: %s", m.Role, m.Content)
	}
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	c := m
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			c.ToolCalls[i] = tc.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the tool call.
func (tc ToolCall) Clone() ToolCall {
	c := tc
	if tc.Arguments != nil {
		c.Arguments = cloneMap(tc.Arguments)
	}
	return c
}

// Transcript renders messages one per line.
func Transcript(msgs []Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}

func cloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
