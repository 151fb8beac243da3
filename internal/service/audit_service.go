package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/pkg/config"
	"github.com/noah-isme/regdesk-api/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService writes the desk audit trail in the background so desk operations
// never wait on it.
type AuditService struct {
	queue  *jobs.Queue[models.AuditLog]
	logger *zap.Logger
}

// NewAuditService builds the audit writer on top of a worker queue.
func NewAuditService(store auditStore, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job[models.AuditLog]) error {
		entry := job.Payload
		return store.Create(ctx, &entry)
	}
	queue := jobs.NewQueue("audit", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger}
}

// Start launches the workers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop flushes pending entries and stops the workers.
func (s *AuditService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Record queues an audit entry. values is stored as JSON when non-nil.
func (s *AuditService) Record(deskID string, admin models.Admin, action, resource, resourceID string, values interface{}) {
	if s == nil {
		return
	}
	entry := models.AuditLog{
		DeskID:   deskID,
		Action:   action,
		Resource: resource,
	}
	if admin.ID != 0 {
		adminID := admin.ID
		entry.AdminID = &adminID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		payload, err := json.Marshal(values)
		if err != nil {
			s.logger.Warn("failed to encode audit values", zap.String("action", action), zap.Error(err))
		} else {
			entry.NewValues = payload
		}
	}
	if _, err := s.queue.Enqueue(action, entry); err != nil {
		s.logger.Warn("failed to queue audit log", zap.String("action", action), zap.Error(err))
	}
}
