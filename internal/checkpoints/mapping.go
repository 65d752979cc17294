package checkpoints

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/query"
	"github.com/JaimeStill/bleak/pkg/repository"
)

var checkpointProjection = query.
	NewProjectionMap("public", "checkpoints", "c").
	Project("thread_id", "ThreadID").
	Project("version", "Version").
	Project("state", "State").
	Project("pending", "Pending").
	Project("retry", "Retry").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var summaryProjection = query.
	NewProjectionMap("public", "checkpoints", "c").
	Project("thread_id", "ThreadID").
	Project("cursor", "Cursor").
	Project("pending_tool", "PendingTool").
	Project("current_prompt", "CurrentPrompt").
	Project("messages", "Messages").
	Project("version", "Version").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

func projections(d query.Dialect) (checkpoint, summary *query.ProjectionMap) {
	if d == query.SQLite {
		return checkpointProjection.WithDialect(d, "main"), summaryProjection.WithDialect(d, "main")
	}
	return checkpointProjection, summaryProjection
}

func scanCheckpoint(s repository.Scanner) (workflow.Checkpoint, error) {
	var (
		cp                    workflow.Checkpoint
		state, pending, retry []byte
	)

	err := s.Scan(
		&cp.ThreadID,
		&cp.Version,
		&state,
		&pending,
		&retry,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
	if err != nil {
		return cp, err
	}

	if err := json.Unmarshal(state, &cp.State); err != nil {
		return cp, fmt.Errorf("decode state: %w", err)
	}
	if len(pending) > 0 {
		cp.Pending = &workflow.Suspension{}
		if err := json.Unmarshal(pending, cp.Pending); err != nil {
			return cp, fmt.Errorf("decode pending: %w", err)
		}
	}
	if len(retry) > 0 {
		cp.Retry = &workflow.RetryPoint{}
		if err := json.Unmarshal(retry, cp.Retry); err != nil {
			return cp, fmt.Errorf("decode retry: %w", err)
		}
	}

	return cp, nil
}

func scanSummary(s repository.Scanner) (workflow.ThreadSummary, error) {
	var ts workflow.ThreadSummary
	var suspended string
	err := s.Scan(
		&ts.ThreadID,
		&ts.Cursor,
		&suspended,
		&ts.CurrentPrompt,
		&ts.Messages,
		&ts.Version,
		&ts.CreatedAt,
		&ts.UpdatedAt,
	)
	ts.PendingTool = workflow.ToolName(suspended)
	ts.Suspended = suspended != ""
	return ts, err
}

// row is the column encoding of a checkpoint.
type row struct {
	cursor        string
	pendingTool   string
	currentPrompt string
	messages      int
	state         string
	pending       any
	retry         any
}

func encode(cp *workflow.Checkpoint) (row, error) {
	r := row{
		cursor:        string(cp.State.Cursor),
		currentPrompt: cp.State.CurrentPrompt,
		messages:      len(cp.State.History),
	}

	state, err := json.Marshal(cp.State)
	if err != nil {
		return r, fmt.Errorf("encode state: %w", err)
	}
	r.state = string(state)

	if cp.Pending != nil {
		pending, err := json.Marshal(cp.Pending)
		if err != nil {
			return r, fmt.Errorf("encode pending: %w", err)
		}
		r.pending = string(pending)
		r.pendingTool = string(cp.Pending.Tool)
	}

	if cp.Retry != nil {
		retry, err := json.Marshal(cp.Retry)
		if err != nil {
			return r, fmt.Errorf("encode retry: %w", err)
		}
		r.retry = string(retry)
	}

	return r, nil
}
