package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/desk"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

// Operation is one unit of desk work executed off the controller goroutine.
type Operation[T any] func(ctx context.Context, session desk.Session) (T, error)

// Outcome is the result of a dispatched operation as seen by its continuation.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Dispatch moves the session out of the slot and runs op on a worker goroutine.
// When op returns, the session is parked again and then runs on the loop with the
// outcome. Only one dispatch per desk can be outstanding; a second one is rejected
// with ErrSessionBusy and leaves the running one untouched.
func Dispatch[T any](l *Loop, name string, op Operation[T], then func(*Loop, Outcome[T])) error {
	c := l.c
	if c.closing {
		return appErrors.ErrDeskClosed
	}

	session, ok := c.slot.Take()
	if !ok {
		c.observer.DispatchRejected(name)
		c.logger.Debug("dispatch rejected", zap.String("operation", name), zap.String("pending", c.status.Operation))
		return appErrors.Clone(appErrors.ErrSessionBusy, fmt.Sprintf("desk session is busy with %s", c.status.Operation))
	}

	started := time.Now()
	c.pending++
	c.setStatus(Status{State: StateDispatched, Operation: name, Since: started.UTC()})
	c.observer.DispatchStarted(name)
	c.logger.Debug("dispatch started", zap.String("operation", name))

	ctx := c.baseCtx
	go func() {
		value, err := runOperation(ctx, session, op)
		c.completions <- func(l *Loop) {
			c.pending--
			if perr := c.slot.Park(session); perr != nil {
				c.logger.Error("re-park session", zap.String("operation", name), zap.Error(perr))
			}
			c.setStatus(Status{State: StateIdle, Since: time.Now().UTC()})

			elapsed := time.Since(started)
			c.observer.DispatchCompleted(name, elapsed, err)
			if err != nil {
				c.logger.Warn("dispatch failed", zap.String("operation", name), zap.Duration("elapsed", elapsed), zap.Error(err))
			} else {
				c.logger.Debug("dispatch completed", zap.String("operation", name), zap.Duration("elapsed", elapsed))
			}

			if then != nil {
				then(l, Outcome[T]{Value: value, Err: err})
			}
		}
	}()

	return nil
}

func runOperation[T any](ctx context.Context, session desk.Session, op Operation[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = appErrors.Internal(fmt.Errorf("panic: %v", r), "desk operation failed")
		}
	}()
	return op(ctx, session)
}

// Call dispatches op from outside the loop and waits for its outcome. If ctx ends
// first the operation keeps running and the session is still returned to the slot.
func Call[T any](ctx context.Context, c *Controller, name string, op Operation[T]) (T, error) {
	var zero T
	outcomes := make(chan Outcome[T], 1)

	err := c.Do(ctx, func(l *Loop) {
		if err := Dispatch(l, name, op, func(_ *Loop, o Outcome[T]) {
			outcomes <- o
		}); err != nil {
			outcomes <- Outcome[T]{Err: err}
		}
	})
	if err != nil {
		return zero, err
	}

	select {
	case o := <-outcomes:
		return o.Value, o.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Inspect runs fn on the loop and returns its result.
func Inspect[T any](ctx context.Context, c *Controller, fn func(*Loop) T) (T, error) {
	var zero T
	results := make(chan T, 1)
	if err := c.Do(ctx, func(l *Loop) { results <- fn(l) }); err != nil {
		return zero, err
	}
	select {
	case v := <-results:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
