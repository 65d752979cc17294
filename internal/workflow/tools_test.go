package workflow_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/bleak/internal/workflow"
)

func call(name string, args map[string]any) workflow.ToolCall {
	return workflow.ToolCall{ID: "call-1", Name: name, Arguments: args}
}

func TestDecodeToolCall(t *testing.T) {
	tests := []struct {
		name     string
		call     workflow.ToolCall
		wantTool workflow.ToolName
		wantErr  error
	}{
		{
			name: "ask_questions",
			call: call("ask_questions", map[string]any{
				"questions": []any{map[string]any{"question": "Who is the audience?"}},
			}),
			wantTool: workflow.ToolAskQuestions,
		},
		{
			name:     "create_prompt",
			call:     call("create_prompt", map[string]any{"prompt": "You are a poet."}),
			wantTool: workflow.ToolCreatePrompt,
		},
		{
			name:     "test_prompt",
			call:     call("test_prompt", map[string]any{"result": "A haiku."}),
			wantTool: workflow.ToolTestPrompt,
		},
		{
			name:     "evaluate_prompt",
			call:     call("evaluate_prompt", map[string]any{"evaluation": 4, "missing_info": "tone"}),
			wantTool: workflow.ToolEvaluatePrompt,
		},
		{
			name:     "suggest_improvements",
			call:     call("suggest_improvements", map[string]any{"improvements": []any{"be brief"}}),
			wantTool: workflow.ToolSuggestImprovements,
		},
		{
			name:    "unknown tool",
			call:    call("delete_everything", map[string]any{}),
			wantErr: workflow.ErrDispatch,
		},
		{
			name:    "missing required argument",
			call:    call("create_prompt", map[string]any{}),
			wantErr: workflow.ErrDispatch,
		},
		{
			name:    "empty prompt",
			call:    call("create_prompt", map[string]any{"prompt": ""}),
			wantErr: workflow.ErrDispatch,
		},
		{
			name:    "evaluation out of range",
			call:    call("evaluate_prompt", map[string]any{"evaluation": 9, "missing_info": ""}),
			wantErr: workflow.ErrDispatch,
		},
		{
			name:    "no questions",
			call:    call("ask_questions", map[string]any{"questions": []any{}}),
			wantErr: workflow.ErrDispatch,
		},
		{
			name:    "nil arguments",
			call:    workflow.ToolCall{ID: "c", Name: "test_prompt"},
			wantErr: workflow.ErrDispatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := workflow.DecodeToolCall(tt.call)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if workflow.ErrorKind(err) != workflow.KindDispatch {
					t.Errorf("kind = %s, want dispatch", workflow.ErrorKind(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Tool() != tt.wantTool {
				t.Errorf("tool = %s, want %s", req.Tool(), tt.wantTool)
			}
			if _, err := json.Marshal(req.Payload()); err != nil {
				t.Errorf("payload not serializable: %v", err)
			}
		})
	}
}

func TestAskQuestionsAssignsIDs(t *testing.T) {
	req, err := workflow.DecodeToolCall(call("ask_questions", map[string]any{
		"questions": []any{
			map[string]any{"question": "Who?"},
			map[string]any{"id": "custom", "question": "What?"},
		},
	}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	aq := req.(*workflow.AskQuestionsRequest)
	if aq.Questions[0].ID != "q1" || aq.Questions[1].ID != "custom" {
		t.Errorf("ids = %s, %s", aq.Questions[0].ID, aq.Questions[1].ID)
	}
}

func resume(t *testing.T, c workflow.ToolCall, value string) (workflow.Outcome, error) {
	t.Helper()
	req, err := workflow.DecodeToolCall(c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return req.Resume(json.RawMessage(value))
}

func TestResumeRouting(t *testing.T) {
	questions := call("ask_questions", map[string]any{
		"questions": []any{
			map[string]any{"question": "Who is the audience?"},
			map[string]any{"question": "What format?", "options": []any{"list", "prose"}},
		},
	})
	created := call("create_prompt", map[string]any{"prompt": "You are a poet."})
	tested := call("test_prompt", map[string]any{"result": "A haiku."})
	evaluated := call("evaluate_prompt", map[string]any{"evaluation": 3, "missing_info": "tone"})
	suggested := call("suggest_improvements", map[string]any{"improvements": []any{"be brief", "add tone"}})

	tests := []struct {
		name     string
		call     workflow.ToolCall
		value    string
		wantNext workflow.StepName
		wantMsg  string
	}{
		{"answers by id", questions, `{"q1":"students","q2":"list"}`, workflow.StepGenerateOrImprove, "A: students"},
		{"answers by order", questions, `["students"]`, workflow.StepGenerateOrImprove, "A: (no answer)"},
		{"answers wrapped in string", questions, `"{\"q1\":\"parents\"}"`, workflow.StepGenerateOrImprove, "A: parents"},
		{"create questions", created, `"questions"`, workflow.StepAskQuestions, "Drafted prompt:"},
		{"create test", created, `"test"`, workflow.StepTestPrompt, "You are a poet."},
		{"create evaluate", created, `" Evaluate "`, workflow.StepEvaluatePrompt, "Drafted prompt:"},
		{"create finish", created, `"finish"`, workflow.StepTerminal, "Drafted prompt:"},
		{"test feedback", tested, `"too long"`, workflow.StepAutoImprove, "too long"},
		{"evaluate questions", evaluated, `"questions"`, workflow.StepAskQuestions, "3/6"},
		{"evaluate test", evaluated, `"test"`, workflow.StepTestPrompt, "Missing information: tone"},
		{"evaluate finish", evaluated, `"finish"`, workflow.StepTerminal, "3/6"},
		{"improvements selected", suggested, `["be brief"]`, workflow.StepGenerateOrImprove, "- be brief"},
		{"improvements empty", suggested, `[]`, workflow.StepAskQuestions, "No improvements selected"},
		{"improvements blank", suggested, `["  "]`, workflow.StepAskQuestions, "No improvements selected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := resume(t, tt.call, tt.value)
			if err != nil {
				t.Fatalf("resume: %v", err)
			}
			if out.Next != tt.wantNext {
				t.Errorf("next = %s, want %s", out.Next, tt.wantNext)
			}
			if out.Update.Merge != workflow.MergeOverrideLast {
				t.Errorf("merge = %s, want override_last", out.Update.Merge)
			}
			if !strings.Contains(workflow.Transcript(out.Update.Messages), tt.wantMsg) {
				t.Errorf("messages %q missing %q", workflow.Transcript(out.Update.Messages), tt.wantMsg)
			}
		})
	}
}

func TestResumeSideEffects(t *testing.T) {
	out, _ := resume(t, call("create_prompt", map[string]any{"prompt": "P1"}), `"test"`)
	if out.Update.CurrentPrompt == nil || *out.Update.CurrentPrompt != "P1" {
		t.Errorf("create_prompt should set current prompt, got %v", out.Update.CurrentPrompt)
	}

	out, _ = resume(t, call("test_prompt", map[string]any{"result": "R"}), `"shorter"`)
	if out.Update.LastResult == nil || *out.Update.LastResult != "R" {
		t.Errorf("test_prompt should set last result")
	}
	if len(out.Update.Messages) != 2 || out.Update.Messages[1].Role != workflow.RoleHuman {
		t.Errorf("test_prompt resolution = %v", out.Update.Messages)
	}

	out, _ = resume(t, call("evaluate_prompt", map[string]any{"evaluation": 2, "missing_info": "audience"}), `"questions"`)
	if out.Update.MissingInfo == nil || *out.Update.MissingInfo != "audience" {
		t.Errorf("evaluate questions should carry missing info")
	}

	out, _ = resume(t, call("ask_questions", map[string]any{
		"questions": []any{map[string]any{"question": "Who?"}},
	}), `{"q1":"me"}`)
	if len(out.Update.Asked) != 1 || out.Update.Asked[0] != "Who?" {
		t.Errorf("asked = %v", out.Update.Asked)
	}
	if out.Update.MissingInfo == nil || *out.Update.MissingInfo != "" {
		t.Error("answering questions should clear missing info")
	}
}

func TestResumeMismatch(t *testing.T) {
	questions := call("ask_questions", map[string]any{
		"questions": []any{map[string]any{"question": "Who?"}},
	})

	tests := []struct {
		name  string
		call  workflow.ToolCall
		value string
	}{
		{"unknown decision", call("create_prompt", map[string]any{"prompt": "p"}), `"banana"`},
		{"decision not a string", call("create_prompt", map[string]any{"prompt": "p"}), `42`},
		{"evaluate rejects evaluate", call("evaluate_prompt", map[string]any{"evaluation": 1, "missing_info": ""}), `"evaluate"`},
		{"empty feedback", call("test_prompt", map[string]any{"result": "r"}), `"   "`},
		{"feedback not a string", call("test_prompt", map[string]any{"result": "r"}), `{"a":1}`},
		{"improvements not a list", call("suggest_improvements", map[string]any{"improvements": []any{}}), `"yes"`},
		{"unknown question id", questions, `{"q9":"x"}`},
		{"too many answers", questions, `["a","b"]`},
		{"no answers", questions, `{}`},
		{"answers wrong shape", questions, `"hello"`},
		{"empty value", questions, ``},
		{"null improvements", call("suggest_improvements", map[string]any{"improvements": []any{"x"}}), `null`},
		{"null improvements wrapped", call("suggest_improvements", map[string]any{"improvements": []any{"x"}}), `"null"`},
		{"null decision", call("create_prompt", map[string]any{"prompt": "p"}), ` null `},
		{"null answers", questions, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resume(t, tt.call, tt.value)
			if !errors.Is(err, workflow.ErrResumeMismatch) {
				t.Errorf("error = %v, want ErrResumeMismatch", err)
			}
		})
	}
}
