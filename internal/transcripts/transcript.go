// Package transcripts archives finished or in-progress threads to blob
// storage as JSON documents and serves them back.
package transcripts

import (
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
)

// keyPrefix namespaces transcript blobs within the storage container.
const keyPrefix = "threads/"

// Transcript is the archived form of a thread.
type Transcript struct {
	ThreadID      string             `json:"thread_id"`
	Cursor        workflow.StepName  `json:"cursor"`
	Finished      bool               `json:"finished"`
	CurrentPrompt string             `json:"current_prompt,omitempty"`
	LastResult    string             `json:"last_result,omitempty"`
	Messages      []workflow.Message `json:"messages"`
	Text          string             `json:"text"`
	Version       int                `json:"version"`
	ArchivedAt    time.Time          `json:"archived_at"`
}

// FromCheckpoint builds a transcript from a checkpoint.
func FromCheckpoint(cp *workflow.Checkpoint, at time.Time) Transcript {
	return Transcript{
		ThreadID:      cp.ThreadID,
		Cursor:        cp.State.Cursor,
		Finished:      cp.Finished(),
		CurrentPrompt: cp.State.CurrentPrompt,
		LastResult:    cp.State.LastResult,
		Messages:      cp.State.Clone().History,
		Text:          workflow.Transcript(cp.State.History),
		Version:       cp.Version,
		ArchivedAt:    at.UTC(),
	}
}

// Key returns the storage key for a thread's transcript.
func Key(threadID string) string {
	return keyPrefix + threadID + ".json"
}
