package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JaimeStill/bleak/pkg/pagination"
)

// Suspension records a point where the conversation awaits external input.
// It is consumed exactly once by a resume.
type Suspension struct {
	Step    StepName        `json:"step"`
	Tool    ToolName        `json:"tool"`
	Call    ToolCall        `json:"call"`
	Payload json.RawMessage `json:"payload"`
}

// RetryPoint is the most recent model-invoking step together with the state
// snapshot taken immediately before it ran.
type RetryPoint struct {
	Step  StepName `json:"step"`
	State State    `json:"state"`
}

// Checkpoint is the durable position of a thread.
type Checkpoint struct {
	ThreadID  string      `json:"thread_id"`
	State     State       `json:"state"`
	Pending   *Suspension `json:"pending,omitempty"`
	Retry     *RetryPoint `json:"retry,omitempty"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Finished reports whether the thread reached the terminal step.
func (c *Checkpoint) Finished() bool {
	return c.State.Cursor == StepTerminal
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	out := *c
	out.State = c.State.Clone()
	if c.Pending != nil {
		p := *c.Pending
		p.Call = c.Pending.Call.Clone()
		p.Payload = append(json.RawMessage(nil), c.Pending.Payload...)
		out.Pending = &p
	}
	if c.Retry != nil {
		out.Retry = &RetryPoint{Step: c.Retry.Step, State: c.Retry.State.Clone()}
	}
	return &out
}

// Summary projects the checkpoint into a thread listing entry.
func (c *Checkpoint) Summary() ThreadSummary {
	s := ThreadSummary{
		ThreadID:      c.ThreadID,
		Cursor:        c.State.Cursor,
		Suspended:     c.Pending != nil,
		CurrentPrompt: c.State.CurrentPrompt,
		Messages:      len(c.State.History),
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Pending != nil {
		s.PendingTool = c.Pending.Tool
	}
	return s
}

// ThreadSummary is a lightweight view of a thread for listings.
type ThreadSummary struct {
	ThreadID      string    `json:"thread_id"`
	Cursor        StepName  `json:"cursor"`
	Suspended     bool      `json:"suspended"`
	PendingTool   ToolName  `json:"pending_tool,omitempty"`
	CurrentPrompt string    `json:"current_prompt,omitempty"`
	Messages      int       `json:"messages"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists checkpoints keyed by thread id.
type Store interface {
	// Load returns the checkpoint for threadID or ErrThreadNotFound.
	Load(ctx context.Context, threadID string) (*Checkpoint, error)
	// Save writes cp if its Version matches the stored version (zero for a
	// new thread), then increments cp.Version and stamps its timestamps.
	// A mismatch returns ErrVersionConflict.
	Save(ctx context.Context, cp *Checkpoint) error
	// List returns a page of thread summaries.
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[ThreadSummary], error)
}
