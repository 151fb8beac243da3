// Package dispatch moves an exclusive desk session between the goroutine that owns a
// desk and short-lived workers running slow storage operations.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/desk"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

// State is the pending-work state of a desk.
type State string

const (
	StateIdle       State = "idle"
	StateDispatched State = "dispatched"
	StateClosed     State = "closed"
)

// Status describes what a desk is doing. Operation is set while dispatched.
type Status struct {
	State     State     `json:"state"`
	Operation string    `json:"operation,omitempty"`
	Since     time.Time `json:"since"`
}

// Observer receives dispatch lifecycle events.
type Observer interface {
	DispatchStarted(operation string)
	DispatchRejected(operation string)
	DispatchCompleted(operation string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) DispatchStarted(string)                         {}
func (nopObserver) DispatchRejected(string)                        {}
func (nopObserver) DispatchCompleted(string, time.Duration, error) {}

// Controller is the single controlling goroutine of one desk. It owns the slot and
// the desk status; other goroutines reach them only through Do.
type Controller struct {
	id       string
	logger   *zap.Logger
	observer Observer

	// loop-owned
	slot    Slot
	status  Status
	pending int
	closing bool
	baseCtx context.Context

	posted      chan func(*Loop)
	completions chan func(*Loop)
	stopping    chan struct{}
	done        chan struct{}
	stopOnce    sync.Once

	mu       sync.Mutex
	started  bool
	snapshot Status
}

// Loop is handed only to closures running on the controller goroutine.
type Loop struct {
	c *Controller
}

// NewController parks session in a fresh controller. Call Run to start it. It panics
// when session is nil.
func NewController(id string, session desk.Session, logger *zap.Logger, observer Observer) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	c := &Controller{
		id:          id,
		logger:      logger,
		observer:    observer,
		baseCtx:     context.Background(),
		posted:      make(chan func(*Loop)),
		completions: make(chan func(*Loop), 1),
		stopping:    make(chan struct{}),
		done:        make(chan struct{}),
	}
	if err := c.slot.Park(session); err != nil {
		panic("dispatch: " + err.Error())
	}
	c.setStatus(Status{State: StateIdle, Since: time.Now().UTC()})
	return c
}

// ID returns the desk id.
func (c *Controller) ID() string { return c.id }

// Run processes posted closures and dispatch completions until ctx is cancelled or
// Stop is called. An outstanding dispatch is always awaited before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("controller already started")
	}
	c.started = true
	c.mu.Unlock()
	defer close(c.done)

	c.baseCtx = context.WithoutCancel(ctx)
	loop := &Loop{c: c}
	c.logger.Debug("desk loop started")

	for {
		select {
		case <-ctx.Done():
			c.requestStop()
			c.drain(loop)
			return ctx.Err()
		case <-c.stopping:
			c.drain(loop)
			return nil
		case fn := <-c.posted:
			fn(loop)
		case fn := <-c.completions:
			fn(loop)
		}
	}
}

func (c *Controller) drain(l *Loop) {
	c.closing = true
	if c.pending > 0 {
		c.logger.Debug("waiting for outstanding dispatch", zap.String("operation", c.status.Operation))
	}
	for c.pending > 0 {
		fn := <-c.completions
		fn(l)
	}
	c.setStatus(Status{State: StateClosed, Since: time.Now().UTC()})
	c.logger.Debug("desk loop stopped")
}

// Do posts fn onto the controller goroutine. It must not be called from the loop.
func (c *Controller) Do(ctx context.Context, fn func(*Loop)) error {
	select {
	case <-c.stopping:
		return appErrors.ErrDeskClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopping:
		return appErrors.ErrDeskClosed
	case c.posted <- fn:
		return nil
	}
}

// Stop closes the desk and waits for the loop to hand back the session.
func (c *Controller) Stop() {
	c.requestStop()
	c.mu.Lock()
	started := c.started
	c.started = true
	c.mu.Unlock()
	if !started {
		c.setStatus(Status{State: StateClosed, Since: time.Now().UTC()})
		close(c.done)
		return
	}
	<-c.done
}

// Done is closed once the loop has exited.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Release returns the parked session after the loop has exited.
func (c *Controller) Release() (desk.Session, bool) {
	select {
	case <-c.done:
		return c.slot.Take()
	default:
		return nil, false
	}
}

// Status returns the last status published by the loop.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Controller) requestStop() {
	c.stopOnce.Do(func() { close(c.stopping) })
}

func (c *Controller) setStatus(s Status) {
	c.status = s
	c.mu.Lock()
	c.snapshot = s
	c.mu.Unlock()
}

// Slot exposes the controller's session slot.
func (l *Loop) Slot() *Slot { return &l.c.slot }

// Status returns the current desk status.
func (l *Loop) Status() Status { return l.c.status }
