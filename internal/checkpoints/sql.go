package checkpoints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/pagination"
	"github.com/JaimeStill/bleak/pkg/query"
	"github.com/JaimeStill/bleak/pkg/repository"
)

// SQL persists checkpoints in the checkpoints table of a PostgreSQL or
// SQLite database.
type SQL struct {
	db         *sql.DB
	dialect    query.Dialect
	checkpoint *query.ProjectionMap
	summary    *query.ProjectionMap
	insert     string
	update     string
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// NewSQL creates a database-backed store for the given dialect.
func NewSQL(db *sql.DB, dialect query.Dialect, logger *slog.Logger, cfg pagination.Config) *SQL {
	checkpoint, summary := projections(dialect)
	table := "public.checkpoints"
	if dialect == query.SQLite {
		table = "checkpoints"
	}

	p := dialect.Placeholder

	insert := fmt.Sprintf(`
		INSERT INTO %s (thread_id, version, cursor, pending_tool, current_prompt, messages, state, pending, retry, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		table,
		p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9), p(10), p(10),
	)

	update := fmt.Sprintf(`
		UPDATE %s
		SET version = %s, cursor = %s, pending_tool = %s, current_prompt = %s, messages = %s,
			state = %s, pending = %s, retry = %s, updated_at = %s
		WHERE thread_id = %s AND version = %s`,
		table,
		p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9), p(10), p(1), p(11),
	)

	return &SQL{
		db:         db,
		dialect:    dialect,
		checkpoint: checkpoint,
		summary:    summary,
		insert:     insert,
		update:     update,
		logger:     logger.With("system", "checkpoints", "dialect", dialect.String()),
		pagination: cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQL) Load(ctx context.Context, threadID string) (*workflow.Checkpoint, error) {
	q, args := query.NewBuilder(s.checkpoint).BuildSingle("ThreadID", threadID)

	cp, err := repository.QueryOne(ctx, s.db, q, args, scanCheckpoint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrThreadNotFound, threadID)
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *SQL) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	r, err := encode(cp)
	if err != nil {
		return err
	}

	now := s.now()
	version := cp.Version + 1

	err = repository.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if cp.Version == 0 {
			_, err := tx.ExecContext(
				ctx, s.insert,
				cp.ThreadID, version, r.cursor, r.pendingTool, r.currentPrompt,
				r.messages, r.state, r.pending, r.retry, now,
			)
			return err
		}

		return repository.ExecExpectOne(
			ctx, tx, s.update,
			cp.ThreadID, version, r.cursor, r.pendingTool, r.currentPrompt,
			r.messages, r.state, r.pending, r.retry, now, cp.Version,
		)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsDuplicate(err) {
			return fmt.Errorf("%w: thread %s at version %d", workflow.ErrVersionConflict, cp.ThreadID, cp.Version)
		}
		return fmt.Errorf("save checkpoint: %w", err)
	}

	if cp.Version == 0 {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Version = version

	s.logger.DebugContext(ctx, "checkpoint saved", "thread_id", cp.ThreadID, "version", version)
	return nil
}

func (s *SQL) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[workflow.ThreadSummary], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(s.summary, defaultSort).
		WhereSearch(page.Search, "ThreadID", "CurrentPrompt")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, s.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count threads: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
