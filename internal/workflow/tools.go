package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ToolName identifies a tool the model may call.
type ToolName string

const (
	ToolAskQuestions        ToolName = "ask_questions"
	ToolCreatePrompt        ToolName = "create_prompt"
	ToolTestPrompt          ToolName = "test_prompt"
	ToolEvaluatePrompt      ToolName = "evaluate_prompt"
	ToolSuggestImprovements ToolName = "suggest_improvements"
)

// ToolDefinition describes a tool offered to the model.
type ToolDefinition struct {
	Name        ToolName       `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// ToolRequest is a decoded, validated tool call. Every request suspends the
// conversation; Resume consumes the external value and yields the outcome
// that continues it.
type ToolRequest interface {
	Tool() ToolName
	Payload() any
	Resume(value json.RawMessage) (Outcome, error)
}

var definitions = map[ToolName]ToolDefinition{
	ToolAskQuestions: {
		Name:        ToolAskQuestions,
		Description: "Ask the user clarifying questions about the goal, context, output format and role of the prompt.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":       map[string]any{"type": "string"},
							"question": map[string]any{"type": "string", "minLength": 1},
							"options": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
						"required": []any{"question"},
					},
				},
			},
			"required": []any{"questions"},
		},
	},
	ToolCreatePrompt: {
		Name:        ToolCreatePrompt,
		Description: "Submit the drafted or revised prompt.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{"type": "string", "minLength": 1},
			},
			"required": []any{"prompt"},
		},
	},
	ToolTestPrompt: {
		Name:        ToolTestPrompt,
		Description: "Report the output produced by running the current prompt.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"result": map[string]any{"type": "string"},
			},
			"required": []any{"result"},
		},
	},
	ToolEvaluatePrompt: {
		Name:        ToolEvaluatePrompt,
		Description: "Score how complete the prompt is from 1 to 6 and describe what information is missing.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"evaluation":   map[string]any{"type": "integer", "minimum": 1, "maximum": 6},
				"missing_info": map[string]any{"type": "string"},
			},
			"required": []any{"evaluation", "missing_info"},
		},
	},
	ToolSuggestImprovements: {
		Name:        ToolSuggestImprovements,
		Description: "Propose concrete improvements to the current prompt.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"improvements": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"improvements"},
		},
	},
}

// Definition returns the tool definition registered under name.
func Definition(name ToolName) (ToolDefinition, bool) {
	def, ok := definitions[name]
	return def, ok
}

// DecodeToolCall validates a tool call's arguments against its schema and
// decodes it into the matching request variant. Unknown tool names and
// invalid arguments fail with ErrDispatch.
func DecodeToolCall(call ToolCall) (ToolRequest, error) {
	name := ToolName(call.Name)
	def, ok := definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tool %q", ErrDispatch, call.Name)
	}

	if err := validateArguments(def, call.Arguments); err != nil {
		return nil, fmt.Errorf("%w: %s arguments: %w", ErrDispatch, name, err)
	}

	switch name {
	case ToolAskQuestions:
		req, err := decodeArguments[*AskQuestionsRequest](call)
		if err != nil {
			return nil, err
		}
		req.assignIDs()
		return req, nil
	case ToolCreatePrompt:
		return decodeArguments[*CreatePromptRequest](call)
	case ToolTestPrompt:
		return decodeArguments[*TestPromptRequest](call)
	case ToolEvaluatePrompt:
		return decodeArguments[*EvaluatePromptRequest](call)
	default:
		return decodeArguments[*SuggestImprovementsRequest](call)
	}
}

func validateArguments(def ToolDefinition, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.Schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	return nil
}

func decodeArguments[T ToolRequest](call ToolCall) (T, error) {
	var req T

	data, err := json.Marshal(call.Arguments)
	if err != nil {
		return req, fmt.Errorf("%w: encode %s arguments: %w", ErrDispatch, call.Name, err)
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: decode %s arguments: %w", ErrDispatch, call.Name, err)
	}

	return req, nil
}
