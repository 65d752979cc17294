// Package threads exposes prompt-refinement conversations over HTTP. Runs
// are streamed to the client as server-sent events or newline-delimited
// JSON while the driver advances the thread.
package threads

import (
	"encoding/json"
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// View is the client-facing projection of a thread checkpoint.
type View struct {
	ThreadID      string               `json:"thread_id"`
	Cursor        workflow.StepName    `json:"cursor"`
	Finished      bool                 `json:"finished"`
	Suspended     bool                 `json:"suspended"`
	Pending       *workflow.Suspension `json:"pending,omitempty"`
	RetryStep     workflow.StepName    `json:"retry_step,omitempty"`
	CurrentPrompt string               `json:"current_prompt,omitempty"`
	LastResult    string               `json:"last_result,omitempty"`
	History       []workflow.Message   `json:"history"`
	Version       int                  `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewView projects a checkpoint into a View.
func NewView(cp *workflow.Checkpoint) View {
	v := View{
		ThreadID:      cp.ThreadID,
		Cursor:        cp.State.Cursor,
		Finished:      cp.Finished(),
		Suspended:     cp.Pending != nil,
		Pending:       cp.Pending,
		CurrentPrompt: cp.State.CurrentPrompt,
		LastResult:    cp.State.LastResult,
		History:       cp.State.History,
		Version:       cp.Version,
		CreatedAt:     cp.CreatedAt,
		UpdatedAt:     cp.UpdatedAt,
	}
	if cp.Retry != nil {
		v.RetryStep = cp.Retry.Step
	}
	if v.History == nil {
		v.History = []workflow.Message{}
	}
	return v
}

// StartRequest begins or restarts a thread.
type StartRequest struct {
	Input string `json:"input" validate:"required,max=32768"`
}

// ResumeRequest answers a thread's pending suspension. Resume holds any
// JSON value; its expected shape depends on the pending tool.
type ResumeRequest struct {
	Resume json.RawMessage `json:"resume" validate:"required"`
}
