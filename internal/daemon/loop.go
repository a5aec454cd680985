package daemon

import (
	"context"
	"errors"
	"log/slog"
)

// ErrLoopStopped is returned by Do once Run has returned.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs closures one at a time on the goroutine that called Run. Every
// preview engine call in the daemon goes through it, so the engine never sees
// two callers at once.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a loop whose Post queue holds up to queue closures.
func NewLoop(queue int, logger *slog.Logger) *Loop {
	if queue <= 0 {
		queue = 64
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		tasks:  make(chan func(), queue),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes queued closures until ctx is cancelled. Queued closures that
// have not started are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	l.logger.Debug("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return nil
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run may have exited before picking the task up.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false when the loop has stopped
// or the queue is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	default:
		l.logger.Warn("event loop queue full, dropping task")
		return false
	}
}

func (l *Loop) exec(fn func()) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()
	fn()
}
