package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const (
	maxQuestions    = 4
	maxImprovements = 3
)

// GenerateOrImproveStep drafts a prompt from the conversation, or revises
// the current prompt using the latest message once one exists.
func GenerateOrImproveStep(rt *Runtime) Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		instruction := createPrompt(s)
		if s.CurrentPrompt != "" {
			instruction = applyPrompt(s)
		}

		msg, err := rt.invokeTool(ctx, instruction, ToolCreatePrompt)
		if err != nil {
			return Outcome{}, fmt.Errorf("generate: %w", err)
		}

		rt.Logger.InfoContext(ctx, "generate step complete", "revision", s.CurrentPrompt != "")

		return Outcome{Update: Append(msg), Next: StepToolSupervisor}, nil
	}
}

// AskQuestionsStep asks the model for clarifying questions, skipping any
// already posed in the thread.
func AskQuestionsStep(rt *Runtime) Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		msg, err := rt.invokeTool(ctx, clarifyPrompt(s), ToolAskQuestions)
		if err != nil {
			return Outcome{}, fmt.Errorf("ask questions: %w", err)
		}

		if err := normalizeQuestions(&msg, s.Asked); err != nil {
			return Outcome{}, fmt.Errorf("ask questions: %w", err)
		}

		rt.Logger.InfoContext(ctx, "ask questions step complete", "previously_asked", len(s.Asked))

		return Outcome{Update: Append(msg), Next: StepToolSupervisor}, nil
	}
}

// TestPromptStep runs the current prompt against the model and records the
// output as a test_prompt tool call for the user to review.
func TestPromptStep(rt *Runtime) Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		if s.CurrentPrompt == "" {
			return Outcome{}, fmt.Errorf("test prompt: %w", ErrNoPrompt)
		}

		result, err := rt.invokeText(ctx, s.CurrentPrompt)
		if err != nil {
			return Outcome{}, fmt.Errorf("test prompt: %w", err)
		}

		call := ToolCall{
			ID:        uuid.NewString(),
			Name:      string(ToolTestPrompt),
			Arguments: map[string]any{"result": result},
		}

		rt.Logger.InfoContext(ctx, "test prompt step complete", "result_length", len(result))

		return Outcome{
			Update: Append(AI("", call)).WithResult(result),
			Next:   StepToolSupervisor,
		}, nil
	}
}

// AutoImproveStep asks the model for concrete improvements based on the
// last test result and the user's feedback.
func AutoImproveStep(rt *Runtime) Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		msg, err := rt.invokeTool(ctx, improvePrompt(s), ToolSuggestImprovements)
		if err != nil {
			return Outcome{}, fmt.Errorf("autoimprove: %w", err)
		}

		truncateList(&msg, "improvements", maxImprovements)

		rt.Logger.InfoContext(ctx, "autoimprove step complete")

		return Outcome{Update: Append(msg), Next: StepToolSupervisor}, nil
	}
}

// EvaluatePromptStep asks the model to score the current prompt.
func EvaluatePromptStep(rt *Runtime) Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		if s.CurrentPrompt == "" {
			return Outcome{}, fmt.Errorf("evaluate prompt: %w", ErrNoPrompt)
		}

		msg, err := rt.invokeTool(ctx, evaluatePrompt(s), ToolEvaluatePrompt)
		if err != nil {
			return Outcome{}, fmt.Errorf("evaluate prompt: %w", err)
		}

		rt.Logger.InfoContext(ctx, "evaluate step complete")

		return Outcome{Update: Append(msg), Next: StepToolSupervisor}, nil
	}
}

// ToolSupervisorStep decodes the tool call on the latest message and
// suspends the conversation until the request is resolved. It never calls
// the model.
func ToolSupervisorStep() Step {
	return func(ctx context.Context, s State) (Outcome, error) {
		last, ok := s.Last()
		if !ok {
			return Outcome{}, fmt.Errorf("%w: empty history", ErrDispatch)
		}

		call, ok := last.ToolCall()
		if !ok {
			return Outcome{}, fmt.Errorf("%w: latest message carries no tool call", ErrDispatch)
		}

		req, err := DecodeToolCall(call)
		if err != nil {
			return Outcome{}, err
		}

		payload, err := json.Marshal(req.Payload())
		if err != nil {
			return Outcome{}, fmt.Errorf("encode %s payload: %w", req.Tool(), err)
		}

		return Outcome{
			Suspend: &Suspension{
				Step:    StepToolSupervisor,
				Tool:    req.Tool(),
				Call:    call.Clone(),
				Payload: payload,
			},
		}, nil
	}
}

// normalizeQuestions drops questions already asked in earlier rounds or
// earlier in the same reply, caps the list and assigns ids to the
// ask_questions call on msg.
func normalizeQuestions(msg *Message, asked []string) error {
	call := &msg.ToolCalls[0]
	if call.Name != string(ToolAskQuestions) {
		return nil
	}

	raw, ok := call.Arguments["questions"].([]any)
	if !ok {
		return nil
	}

	seen := slices.Clone(asked)
	kept := make([]any, 0, maxQuestions)
	for _, item := range raw {
		q, ok := item.(map[string]any)
		if !ok {
			kept = append(kept, item)
			continue
		}
		text, _ := q["question"].(string)
		text = strings.TrimSpace(text)
		if slices.ContainsFunc(seen, func(a string) bool {
			return strings.EqualFold(strings.TrimSpace(a), text)
		}) {
			continue
		}
		seen = append(seen, text)
		kept = append(kept, q)
		if len(kept) == maxQuestions {
			break
		}
	}

	if len(kept) == 0 {
		return fmt.Errorf("%w: model repeated only questions already asked", ErrCapability)
	}

	for i, item := range kept {
		if q, ok := item.(map[string]any); ok {
			q["id"] = fmt.Sprintf("q%d", i+1)
		}
	}

	call.Arguments["questions"] = kept
	return nil
}

func truncateList(msg *Message, key string, limit int) {
	call := &msg.ToolCalls[0]
	if items, ok := call.Arguments[key].([]any); ok && len(items) > limit {
		call.Arguments[key] = items[:limit]
	}
}
