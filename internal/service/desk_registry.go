package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/desk"
	"github.com/noah-isme/regdesk-api/internal/dispatch"
	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/logger"
)

// Desk is one logged-in registration desk with its controlling loop.
type Desk struct {
	ID         string
	Admin      models.Admin
	OpenedAt   time.Time
	controller *dispatch.Controller

	// guarded by DeskRegistry.mu; zero means the desk never expires
	expiresAt time.Time
}

// Controller returns the loop owning the desk session.
func (d *Desk) Controller() *dispatch.Controller {
	return d.controller
}

// DeskRegistry tracks open desks by id. Each login gets its own session and loop.
type DeskRegistry struct {
	gate    desk.Gate
	metrics *MetricsService
	logger  *zap.Logger

	mu    sync.RWMutex
	desks map[string]*Desk
}

// NewDeskRegistry constructs an empty registry.
func NewDeskRegistry(gate desk.Gate, metrics *MetricsService, logger *zap.Logger) *DeskRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeskRegistry{
		gate:    gate,
		metrics: metrics,
		logger:  logger,
		desks:   make(map[string]*Desk),
	}
}

// Open logs in through the gate and starts a loop for the new session.
func (r *DeskRegistry) Open(ctx context.Context, username, password string) (*Desk, error) {
	session, err := r.gate.Login(ctx, username, password)
	r.metrics.RecordLogin(err)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	admin := session.Admin()
	var observer dispatch.Observer
	if r.metrics != nil {
		observer = r.metrics
	}
	d := &Desk{
		ID:         id,
		Admin:      admin,
		OpenedAt:   time.Now().UTC(),
		controller: dispatch.NewController(id, session, logger.ForDesk(r.logger, id, admin.ID), observer),
	}
	go func() {
		_ = d.controller.Run(context.Background())
	}()

	r.mu.Lock()
	r.desks[id] = d
	r.mu.Unlock()

	r.metrics.DeskOpened()
	r.logger.Info("desk opened", zap.String(logger.DeskIDKey, id), zap.Int64("admin_id", admin.ID))
	return d, nil
}

// Get returns an open desk. A desk past its expiry is reported closed.
func (r *DeskRegistry) Get(id string) (*Desk, error) {
	r.mu.RLock()
	d, ok := r.desks[id]
	expired := ok && isExpired(d, time.Now())
	r.mu.RUnlock()
	if !ok || expired {
		return nil, appErrors.Clone(appErrors.ErrDeskClosed, "")
	}
	return d, nil
}

// SetExpiry records when the desk's bearer token stops being accepted.
func (r *DeskRegistry) SetExpiry(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.desks[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrDeskClosed, "")
	}
	d.expiresAt = at
	return nil
}

// Sweep closes every desk that expired before now and returns how many it closed.
func (r *DeskRegistry) Sweep(now time.Time) int {
	r.mu.RLock()
	var ids []string
	for id, d := range r.desks {
		if isExpired(d, now) {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range ids {
		if err := r.Close(id); err == nil {
			closed++
			r.logger.Info("desk expired", zap.String(logger.DeskIDKey, id))
		}
	}
	return closed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *DeskRegistry) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

func isExpired(d *Desk, now time.Time) bool {
	return !d.expiresAt.IsZero() && !now.Before(d.expiresAt)
}

// Close stops the desk loop once its pending operation, if any, has returned.
func (r *DeskRegistry) Close(id string) error {
	r.mu.Lock()
	d, ok := r.desks[id]
	delete(r.desks, id)
	r.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrDeskClosed, "")
	}
	d.controller.Stop()
	r.metrics.DeskClosed()
	r.logger.Info("desk closed", zap.String(logger.DeskIDKey, id))
	return nil
}

// CloseAll stops every open desk.
func (r *DeskRegistry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.desks))
	for id := range r.desks {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		_ = r.Close(id)
	}
}

// Count returns the number of open desks.
func (r *DeskRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.desks)
}
