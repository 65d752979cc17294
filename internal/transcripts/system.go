package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/storage"
)

// Source provides the checkpoints that transcripts are built from.
type Source interface {
	Snapshot(ctx context.Context, threadID string) (*workflow.Checkpoint, error)
}

// System defines the transcript archive operations.
type System interface {
	Handler() *Handler

	// Archive snapshots the thread and uploads its transcript.
	Archive(ctx context.Context, threadID string) (*Transcript, error)
	// ArchiveCheckpoint uploads the transcript of an already loaded checkpoint.
	ArchiveCheckpoint(ctx context.Context, cp *workflow.Checkpoint) (*Transcript, error)
	Find(ctx context.Context, threadID string) (*Transcript, error)
	// Delete removes the archived transcript of a thread.
	Delete(ctx context.Context, threadID string) error
	List(ctx context.Context, marker string, maxResults int32) (*storage.BlobList, error)
}

type archive struct {
	source      Source
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
	now         func() time.Time
}

// New creates a transcript archive backed by store.
func New(source Source, store storage.System, logger *slog.Logger, maxListSize int32) System {
	return &archive{
		source:      source,
		store:       store,
		logger:      logger.With("system", "transcripts"),
		maxListSize: maxListSize,
		now:         time.Now,
	}
}

func (a *archive) Handler() *Handler {
	return NewHandler(a, a.logger, a.maxListSize)
}

func (a *archive) Archive(ctx context.Context, threadID string) (*Transcript, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	cp, err := a.source.Snapshot(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("snapshot thread: %w", err)
	}

	return a.ArchiveCheckpoint(ctx, cp)
}

func (a *archive) ArchiveCheckpoint(ctx context.Context, cp *workflow.Checkpoint) (*Transcript, error) {
	if err := validateThreadID(cp.ThreadID); err != nil {
		return nil, err
	}

	t := FromCheckpoint(cp, a.now())

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	key := Key(cp.ThreadID)
	if err := a.store.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return nil, fmt.Errorf("upload transcript: %w", err)
	}

	a.logger.InfoContext(
		ctx, "transcript archived",
		"thread_id", cp.ThreadID,
		"key", key,
		"messages", len(t.Messages),
		"bytes", len(data),
	)

	return &t, nil
}

func (a *archive) Find(ctx context.Context, threadID string) (*Transcript, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	result, err := a.store.Download(ctx, Key(threadID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, threadID)
		}
		return nil, fmt.Errorf("download transcript: %w", err)
	}
	defer result.Body.Close()

	var t Transcript
	if err := json.NewDecoder(result.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	return &t, nil
}

func (a *archive) Delete(ctx context.Context, threadID string) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}

	if err := a.store.Delete(ctx, Key(threadID)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, threadID)
		}
		return fmt.Errorf("delete transcript: %w", err)
	}

	a.logger.InfoContext(ctx, "transcript deleted", "thread_id", threadID)
	return nil
}

func (a *archive) List(ctx context.Context, marker string, maxResults int32) (*storage.BlobList, error) {
	return a.store.List(ctx, keyPrefix, marker, maxResults)
}

// Hook returns a finish hook that archives each completed thread. Failures
// are logged and never affect the run.
func Hook(sys System, logger *slog.Logger) func(ctx context.Context, cp *workflow.Checkpoint) {
	return func(ctx context.Context, cp *workflow.Checkpoint) {
		if _, err := sys.ArchiveCheckpoint(ctx, cp); err != nil {
			logger.WarnContext(ctx, "auto-archive failed", "thread_id", cp.ThreadID, "error", err)
		}
	}
}

func validateThreadID(threadID string) error {
	if strings.TrimSpace(threadID) == "" || strings.ContainsAny(threadID, "/\\") || strings.Contains(threadID, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidThread, threadID)
	}
	return nil
}
