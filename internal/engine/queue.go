package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/maauso/avatarkit/internal/metrics"
)

// ErrOperationPanicked is returned by Run when an operation panics. The
// slot is released and the session files are removed as usual.
var ErrOperationPanicked = errors.New("engine operation panicked")

// Operation is the engine-side part of one avatar operation: writes,
// execution and reads against a fresh Session.
type Operation func(ctx context.Context, s *Session) error

// Queue admits one Operation at a time to a shared Engine. The engine
// has no call queue of its own and its filesystem is shared, so the
// whole write, execute and read sequence runs under a single slot.
type Queue struct {
	engine Engine
	slot   *semaphore.Weighted
	logger *slog.Logger
}

// NewQueue creates a queue in front of e.
func NewQueue(e Engine, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		engine: e,
		slot:   semaphore.NewWeighted(1),
		logger: logger,
	}
}

// Run waits for the engine and runs op with a new Session.
//
// Waiting honors ctx. Once admitted, op runs on a context detached from
// ctx and always runs to completion: if ctx ends first, Run returns
// ctx.Err() while op keeps the slot until it settles and its session
// files are removed.
func (q *Queue) Run(ctx context.Context, op Operation) error {
	start := time.Now()
	if err := q.slot.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for engine: %w", err)
	}
	metrics.QueueWait.Observe(time.Since(start).Seconds())

	runCtx := context.WithoutCancel(ctx)
	session := NewSession(q.engine)
	done := make(chan error, 1)

	go func() {
		defer q.slot.Release(1)

		err := q.call(runCtx, op, session)
		if cerr := session.Close(runCtx); cerr != nil {
			q.logger.Warn("failed to remove session files",
				slog.String("session", session.Token()),
				slog.String("error", cerr.Error()),
			)
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		metrics.QueueAbandoned.Inc()
		q.logger.Warn("caller stopped waiting, draining engine operation",
			slog.String("session", session.Token()),
			slog.String("error", ctx.Err().Error()),
		)
		return fmt.Errorf("engine operation abandoned: %w", ctx.Err())
	}
}

// call runs op and turns a panic into ErrOperationPanicked. op runs on the
// queue's goroutine, out of reach of any HTTP recovery middleware.
func (q *Queue) call(ctx context.Context, op Operation, s *Session) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Error("engine operation panicked",
				slog.String("session", s.Token()),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %v", ErrOperationPanicked, rec)
		}
	}()
	return op(ctx, s)
}
