package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/bleak/pkg/pagination"
)

// UpdateKind distinguishes per-step updates from the final markers that end
// every run.
type UpdateKind string

const (
	UpdateStep      UpdateKind = "step"
	UpdateSuspended UpdateKind = "suspended"
	UpdateDone      UpdateKind = "done"
	UpdateError     UpdateKind = "error"
)

// ErrorInfo describes a failure reported on the update stream.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StepUpdate is one event of a run.
type StepUpdate struct {
	ThreadID   string      `json:"thread_id"`
	Type       UpdateKind  `json:"type"`
	Step       StepName    `json:"step,omitempty"`
	Update     *Update     `json:"update,omitempty"`
	Suspended  bool        `json:"suspended"`
	Suspension *Suspension `json:"suspension,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
}

// Final reports whether the update ends the run.
func (u StepUpdate) Final() bool {
	return u.Type != UpdateStep
}

// Sink receives updates in order. A sink error stops the run; the last
// saved checkpoint remains the thread's position.
type Sink func(StepUpdate) error

// Driver runs threads through a graph, persisting a checkpoint after every
// step. Precondition failures are returned before any update is emitted;
// once running, every run ends with exactly one final marker.
type Driver struct {
	graph    *Graph
	store    Store
	logger   *slog.Logger
	locks    *threadLocks
	mu       sync.Mutex
	draining bool
	runs     sync.WaitGroup
	maxSteps int
	onFinish func(ctx context.Context, cp *Checkpoint)
}

// NewDriver creates a Driver. A maxSteps of zero disables the per-run limit.
func NewDriver(graph *Graph, store Store, logger *slog.Logger, maxSteps int) *Driver {
	return &Driver{
		graph:    graph,
		store:    store,
		logger:   logger.With("system", "driver"),
		locks:    newThreadLocks(),
		maxSteps: maxSteps,
	}
}

// OnFinish registers a hook invoked with a copy of the checkpoint after the
// done marker of a finished thread is emitted. The hook's context is not
// cancelled with the run.
func (d *Driver) OnFinish(fn func(ctx context.Context, cp *Checkpoint)) {
	d.onFinish = fn
}

// Drain stops the driver from accepting new runs and blocks until every
// in-flight run has returned.
func (d *Driver) Drain() {
	d.mu.Lock()
	d.draining = true
	d.mu.Unlock()

	d.runs.Wait()
}

// begin registers a run, or fails once Drain has been called.
func (d *Driver) begin() (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.draining {
		return nil, ErrDraining
	}
	d.runs.Add(1)
	return d.runs.Done, nil
}

// Snapshot returns the current checkpoint of a thread.
func (d *Driver) Snapshot(ctx context.Context, threadID string) (*Checkpoint, error) {
	return d.store.Load(ctx, threadID)
}

// Threads lists thread summaries from the checkpoint store.
func (d *Driver) Threads(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[ThreadSummary], error) {
	return d.store.List(ctx, page)
}

// Start begins, or restarts, a thread from the entry step with input as the
// first human message.
func (d *Driver) Start(ctx context.Context, threadID, input string, sink Sink) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyInput
	}

	release, ok := d.locks.acquire(threadID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrThreadBusy, threadID)
	}
	defer release()

	done, err := d.begin()
	if err != nil {
		return err
	}
	defer done()

	cp, err := d.store.Load(ctx, threadID)
	switch {
	case errors.Is(err, ErrThreadNotFound):
		cp = &Checkpoint{ThreadID: threadID}
	case err != nil:
		return fmt.Errorf("load checkpoint: %w", err)
	}

	entry := d.graph.EntryPoint()
	cp.State = State{History: []Message{Human(input)}, Cursor: entry}
	cp.Pending = nil
	cp.Retry = nil

	if err := d.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	d.logger.InfoContext(ctx, "thread started", "thread_id", threadID, "entry", entry)
	return d.run(ctx, cp, sink)
}

// Resume feeds value to the thread's pending suspension and continues the
// run from the step it selects. Nothing is mutated when the value does not
// fit the pending request.
func (d *Driver) Resume(ctx context.Context, threadID string, value json.RawMessage, sink Sink) error {
	release, ok := d.locks.acquire(threadID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrThreadBusy, threadID)
	}
	defer release()

	done, err := d.begin()
	if err != nil {
		return err
	}
	defer done()

	cp, err := d.store.Load(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return fmt.Errorf("%w: %w", ErrResumeMismatch, err)
		}
		return fmt.Errorf("load checkpoint: %w", err)
	}

	if cp.Pending == nil {
		if cp.Finished() {
			return fmt.Errorf("%w: %w", ErrResumeMismatch, ErrThreadFinished)
		}
		return fmt.Errorf("%w: thread %s is not suspended", ErrResumeMismatch, threadID)
	}

	req, err := DecodeToolCall(cp.Pending.Call)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResumeMismatch, err)
	}

	outcome, err := req.Resume(value)
	if err != nil {
		return err
	}

	from := cp.Pending.Step
	if err := d.graph.Transition(from, outcome.Next); err != nil {
		return err
	}

	next := cp.Clone()
	next.State = Apply(cp.State, outcome.Update)
	next.State.Cursor = outcome.Next
	next.Pending = nil

	if err := d.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	d.logger.InfoContext(
		ctx, "thread resumed",
		"thread_id", threadID,
		"tool", req.Tool(),
		"next", outcome.Next,
	)

	update := outcome.Update
	if err := sink(StepUpdate{ThreadID: threadID, Type: UpdateStep, Step: from, Update: &update}); err != nil {
		return err
	}

	return d.run(ctx, next, sink)
}

// Retry re-executes the thread's most recent model-invoking step from the
// state captured before it ran. Consecutive retries start from the same
// snapshot.
func (d *Driver) Retry(ctx context.Context, threadID string, sink Sink) error {
	release, ok := d.locks.acquire(threadID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrThreadBusy, threadID)
	}
	defer release()

	done, err := d.begin()
	if err != nil {
		return err
	}
	defer done()

	cp, err := d.store.Load(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	// A thread that is neither suspended nor finished stopped before the
	// step at its cursor completed; that step is re-executed in place.
	if cp.Pending == nil && !cp.Finished() && cp.State.Cursor != "" {
		d.logger.InfoContext(ctx, "thread retry", "thread_id", threadID, "step", cp.State.Cursor)
		return d.run(ctx, cp, sink)
	}

	if cp.Retry == nil {
		return fmt.Errorf("%w: %w", ErrResumeMismatch, ErrNothingToRetry)
	}

	cp.State = cp.Retry.State.Clone()
	cp.State.Cursor = cp.Retry.Step
	cp.Pending = nil

	if err := d.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	d.logger.InfoContext(ctx, "thread retry", "thread_id", threadID, "step", cp.Retry.Step)
	return d.run(ctx, cp, sink)
}

func (d *Driver) run(ctx context.Context, cp *Checkpoint, sink Sink) error {
	for count := 0; ; count++ {
		cursor := cp.State.Cursor

		if cursor == StepTerminal {
			d.logger.InfoContext(ctx, "thread finished", "thread_id", cp.ThreadID)
			err := sink(StepUpdate{ThreadID: cp.ThreadID, Type: UpdateDone, Step: StepTerminal})
			if d.onFinish != nil {
				d.onFinish(context.WithoutCancel(ctx), cp.Clone())
			}
			return err
		}

		if d.maxSteps > 0 && count >= d.maxSteps {
			return d.fail(ctx, cp, cursor, fmt.Errorf("%w: %d", ErrMaxSteps, d.maxSteps), sink)
		}

		if err := ctx.Err(); err != nil {
			return d.fail(ctx, cp, cursor, err, sink)
		}

		step, err := d.graph.Step(cursor)
		if err != nil {
			return d.fail(ctx, cp, cursor, err, sink)
		}

		retryable := modelStep(cursor)
		if retryable {
			cp.Retry = &RetryPoint{Step: cursor, State: cp.State.Clone()}
		}

		outcome, err := step(ctx, cp.State.Clone())
		if err != nil {
			if retryable {
				if saveErr := d.store.Save(ctx, cp); saveErr != nil {
					d.logger.ErrorContext(ctx, "save retry point failed", "thread_id", cp.ThreadID, "error", saveErr)
				}
			}
			return d.fail(ctx, cp, cursor, err, sink)
		}

		if outcome.Suspend != nil {
			cp.State = Apply(cp.State, outcome.Update)
			cp.Pending = outcome.Suspend

			if err := d.store.Save(ctx, cp); err != nil {
				return d.fail(ctx, cp, cursor, fmt.Errorf("save checkpoint: %w", err), sink)
			}

			d.logger.InfoContext(
				ctx, "thread suspended",
				"thread_id", cp.ThreadID,
				"step", cursor,
				"tool", cp.Pending.Tool,
			)

			return sink(StepUpdate{
				ThreadID:   cp.ThreadID,
				Type:       UpdateSuspended,
				Step:       cursor,
				Suspended:  true,
				Suspension: cp.Pending,
			})
		}

		if err := d.graph.Transition(cursor, outcome.Next); err != nil {
			return d.fail(ctx, cp, cursor, err, sink)
		}

		cp.State = Apply(cp.State, outcome.Update)
		cp.State.Cursor = outcome.Next

		if err := d.store.Save(ctx, cp); err != nil {
			return d.fail(ctx, cp, cursor, fmt.Errorf("save checkpoint: %w", err), sink)
		}

		d.logger.InfoContext(
			ctx, "step complete",
			"thread_id", cp.ThreadID,
			"step", cursor,
			"next", outcome.Next,
		)

		update := outcome.Update
		if err := sink(StepUpdate{ThreadID: cp.ThreadID, Type: UpdateStep, Step: cursor, Update: &update}); err != nil {
			return err
		}
	}
}

func (d *Driver) fail(ctx context.Context, cp *Checkpoint, step StepName, err error, sink Sink) error {
	d.logger.ErrorContext(
		ctx, "step failed",
		"thread_id", cp.ThreadID,
		"step", step,
		"error", err,
	)

	return sink(StepUpdate{
		ThreadID: cp.ThreadID,
		Type:     UpdateError,
		Step:     step,
		Error:    &ErrorInfo{Kind: ErrorKind(err), Message: err.Error()},
	})
}
