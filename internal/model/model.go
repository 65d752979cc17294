// Package model adapts hosted language-model APIs to the workflow Model
// capability.
package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// New returns the Model for the configured provider.
func New(cfg *Config) (workflow.Model, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// systemText joins the request's system instruction with any system
// messages in the conversation.
func systemText(req workflow.ModelRequest) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(req.System); s != "" {
		parts = append(parts, s)
	}
	for _, m := range req.Messages {
		if m.Role == workflow.RoleSystem && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// decodeArguments parses tool-call arguments. An empty or null input yields
// an empty map; malformed JSON is reported.
func decodeArguments(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}

func required(schema map[string]any) []string {
	switch v := schema["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
