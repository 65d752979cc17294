package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Model is the language-model capability consumed by steps.
type Model interface {
	Invoke(ctx context.Context, req ModelRequest) (Message, error)
}

// ModelRequest is a single model invocation. Tools, when present, are
// offered to the model; an empty list requests plain text.
type ModelRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Runtime bundles the dependencies that workflow steps require.
type Runtime struct {
	Model  Model
	Logger *slog.Logger
}

// invokeTool asks the model to respond through the named tool. The reply
// must carry a tool call; its name is checked later by the supervisor.
func (rt *Runtime) invokeTool(ctx context.Context, instruction string, tool ToolName) (Message, error) {
	def, ok := Definition(tool)
	if !ok {
		return Message{}, fmt.Errorf("%w: unknown tool %q", ErrDispatch, tool)
	}

	msg, err := rt.Model.Invoke(ctx, ModelRequest{
		Messages: []Message{Human(instruction)},
		Tools:    []ToolDefinition{def},
	})
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrCapability, err)
	}

	if len(msg.ToolCalls) == 0 {
		return Message{}, fmt.Errorf("%w: expected a %s tool call, got text", ErrCapability, tool)
	}

	msg.Role = RoleAI
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = uuid.NewString()
		}
	}

	return msg, nil
}

func (rt *Runtime) invokeText(ctx context.Context, input string) (string, error) {
	msg, err := rt.Model.Invoke(ctx, ModelRequest{
		Messages: []Message{Human(input)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCapability, err)
	}
	return msg.Content, nil
}
