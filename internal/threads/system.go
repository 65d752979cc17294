package threads

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/JaimeStill/bleak/internal/workflow"
	"github.com/JaimeStill/bleak/pkg/pagination"
)

// System defines the thread operations served over HTTP.
type System interface {
	Handler(maxBodySize int64) *Handler

	Start(ctx context.Context, threadID, input string, sink workflow.Sink) error
	Resume(ctx context.Context, threadID string, value json.RawMessage, sink workflow.Sink) error
	Retry(ctx context.Context, threadID string, sink workflow.Sink) error
	Find(ctx context.Context, threadID string) (*View, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[workflow.ThreadSummary], error)
}

type service struct {
	driver     *workflow.Driver
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a thread system over driver.
func New(driver *workflow.Driver, logger *slog.Logger, pagination pagination.Config) System {
	return &service{
		driver:     driver,
		logger:     logger.With("system", "threads"),
		pagination: pagination,
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxBodySize)
}

func (s *service) Start(ctx context.Context, threadID, input string, sink workflow.Sink) error {
	return s.driver.Start(ctx, threadID, input, sink)
}

func (s *service) Resume(ctx context.Context, threadID string, value json.RawMessage, sink workflow.Sink) error {
	return s.driver.Resume(ctx, threadID, value, sink)
}

func (s *service) Retry(ctx context.Context, threadID string, sink workflow.Sink) error {
	return s.driver.Retry(ctx, threadID, sink)
}

func (s *service) Find(ctx context.Context, threadID string) (*View, error) {
	cp, err := s.driver.Snapshot(ctx, threadID)
	if err != nil {
		return nil, err
	}
	v := NewView(cp)
	return &v, nil
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[workflow.ThreadSummary], error) {
	page.Normalize(s.pagination)
	return s.driver.Threads(ctx, page)
}
