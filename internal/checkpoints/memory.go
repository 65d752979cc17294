package checkpoints

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/pagination"
	"github.com/JaimeStill/bleak/pkg/query"
)

// Memory is a process-local checkpoint store. Stored checkpoints are deep
// copies, so callers never share state with the store.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]*workflow.Checkpoint
	pagination pagination.Config
	now        func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory(cfg pagination.Config) *Memory {
	return &Memory{
		items:      make(map[string]*workflow.Checkpoint),
		pagination: cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Load(ctx context.Context, threadID string) (*workflow.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.items[threadID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workflow.ErrThreadNotFound, threadID)
	}
	return cp.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[cp.ThreadID]
	stored := 0
	if ok {
		stored = current.Version
	}
	if cp.Version != stored {
		return fmt.Errorf("%w: thread %s at version %d, have %d", workflow.ErrVersionConflict, cp.ThreadID, stored, cp.Version)
	}

	now := m.now()
	if !ok {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Version++

	m.items[cp.ThreadID] = cp.Clone()
	return nil
}

func (m *Memory) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[workflow.ThreadSummary], error) {
	page.Normalize(m.pagination)

	m.mu.RLock()
	summaries := make([]workflow.ThreadSummary, 0, len(m.items))
	for _, cp := range m.items {
		s := cp.Summary()
		if page.Search != nil && !matches(s, *page.Search) {
			continue
		}
		summaries = append(summaries, s)
	}
	m.mu.RUnlock()

	sortSummaries(summaries, page.Sort)

	total := len(summaries)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(summaries[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func matches(s workflow.ThreadSummary, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.ThreadID), search) ||
		strings.Contains(strings.ToLower(s.CurrentPrompt), search)
}

func sortSummaries(items []workflow.ThreadSummary, fields []query.SortField) {
	if len(fields) == 0 {
		fields = []query.SortField{defaultSort}
	}

	slices.SortStableFunc(items, func(a, b workflow.ThreadSummary) int {
		for _, f := range fields {
			var c int
			switch query.FieldKey(f.Field) {
			case "threadid":
				c = cmp.Compare(a.ThreadID, b.ThreadID)
			case "cursor":
				c = cmp.Compare(a.Cursor, b.Cursor)
			case "version":
				c = cmp.Compare(a.Version, b.Version)
			case "createdat":
				c = a.CreatedAt.Compare(b.CreatedAt)
			case "updatedat":
				c = a.UpdatedAt.Compare(b.UpdatedAt)
			}
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ThreadID, b.ThreadID)
	})
}
