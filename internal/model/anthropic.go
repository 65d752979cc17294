package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// Anthropic invokes the Anthropic Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature *float64
}

// NewAnthropic creates an Anthropic model from cfg.
func NewAnthropic(cfg *Config) *Anthropic {
	opts := []aoption.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, aoption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, aoption.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Name,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (a *Anthropic) Invoke(ctx context.Context, req workflow.ModelRequest) (workflow.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  anthropicMessages(req.Messages),
	}
	if a.temperature != nil {
		params.Temperature = anthropic.Float(*a.temperature)
	}
	if system := systemText(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(req.Tools) > 0 {
		params.Tools = anthropicTools(req.Tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return workflow.Message{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var (
		text  strings.Builder
		calls []workflow.ToolCall
	)
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			args, err := decodeArguments(v.Input)
			if err != nil {
				return workflow.Message{}, err
			}
			calls = append(calls, workflow.ToolCall{ID: v.ID, Name: v.Name, Arguments: args})
		}
	}

	return workflow.AI(text.String(), calls...), nil
}

func anthropicTools(defs []workflow.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		param := anthropic.ToolParam{
			Name:        string(def.Name),
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: def.Schema["properties"],
				Required:   required(def.Schema),
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}

// anthropicMessages renders the conversation as alternating text turns.
// Tool traffic is flattened into its transcript form.
func anthropicMessages(msgs []workflow.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case workflow.RoleSystem:
			continue
		case workflow.RoleAI:
			content := m.Content
			if len(m.ToolCalls) > 0 {
				content = m.String()
			}
			if content == "" {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(content)))
		case workflow.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.String())))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
