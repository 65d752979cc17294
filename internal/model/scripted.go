package model

import (
	"context"
	"errors"
	"sync"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// ErrScriptExhausted is returned when a Scripted model has no replies left.
var ErrScriptExhausted = errors.New("scripted model has no replies left")

// Reply is one scripted model response.
type Reply struct {
	Message workflow.Message
	Err     error
}

// Scripted replays queued replies in order and records every request. It
// stands in for a hosted model in tests and offline runs.
type Scripted struct {
	mu       sync.Mutex
	replies  []Reply
	requests []workflow.ModelRequest
}

// NewScripted creates a Scripted model with the given replies.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Push appends replies to the queue.
func (s *Scripted) Push(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Requests returns the requests received so far.
func (s *Scripted) Requests() []workflow.ModelRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]workflow.ModelRequest(nil), s.requests...)
}

// Remaining reports how many replies are still queued.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}

func (s *Scripted) Invoke(ctx context.Context, req workflow.ModelRequest) (workflow.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	if err := ctx.Err(); err != nil {
		return workflow.Message{}, err
	}
	if len(s.replies) == 0 {
		return workflow.Message{}, ErrScriptExhausted
	}

	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.Message.Clone(), next.Err
}

// ToolReply scripts a reply carrying a single tool call.
func ToolReply(tool workflow.ToolName, args map[string]any) Reply {
	return Reply{Message: workflow.AI("", workflow.ToolCall{Name: string(tool), Arguments: args})}
}

// TextReply scripts a plain text reply.
func TextReply(text string) Reply {
	return Reply{Message: workflow.AI(text)}
}

// ErrorReply scripts a failed invocation.
func ErrorReply(err error) Reply {
	return Reply{Err: err}
}
