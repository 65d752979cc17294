package model

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oshared "github.com/openai/openai-go/shared"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// OpenAI invokes the OpenAI Chat Completions API or any compatible endpoint.
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature *float64
}

// NewOpenAI creates an OpenAI model from cfg.
func NewOpenAI(cfg *Config) *OpenAI {
	opts := []ooption.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, ooption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ooption.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       cfg.Name,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAI) Invoke(ctx context.Context, req workflow.ModelRequest) (workflow.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:     oshared.ChatModel(o.model),
		Messages:  openAIMessages(req),
		MaxTokens: openai.Int(o.maxTokens),
	}
	if o.temperature != nil {
		params.Temperature = openai.Float(*o.temperature)
	}
	if len(req.Tools) > 0 {
		params.Tools = openAITools(req.Tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
		params.ParallelToolCalls = openai.Bool(false)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return workflow.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return workflow.Message{}, fmt.Errorf("openai chat completion: no choices returned")
	}

	choice := resp.Choices[0].Message
	calls := make([]workflow.ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		args, err := decodeArguments([]byte(tc.Function.Arguments))
		if err != nil {
			return workflow.Message{}, err
		}
		calls = append(calls, workflow.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}

	return workflow.AI(choice.Content, calls...), nil
}

func openAITools(defs []workflow.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: oshared.FunctionDefinitionParam{
				Name:        string(def.Name),
				Description: openai.String(def.Description),
				Parameters:  oshared.FunctionParameters(def.Schema),
			},
		})
	}
	return out
}

func openAIMessages(req workflow.ModelRequest) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if system := systemText(req); system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range req.Messages {
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
			out = append(out, openai.AssistantMessage(content))
		case workflow.RoleTool:
			out = append(out, openai.UserMessage(m.String()))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
