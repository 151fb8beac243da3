package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/repository"
	"github.com/noah-isme/regdesk-api/internal/repository/memory"
	"github.com/noah-isme/regdesk-api/internal/service"
	"github.com/noah-isme/regdesk-api/pkg/cache"
	"github.com/noah-isme/regdesk-api/pkg/config"
	"github.com/noah-isme/regdesk-api/pkg/database"
)

type auditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// backend is the storage selected by DESK_BACKEND together with its closers.
type backend struct {
	gate    *service.LoginService
	audit   auditStore
	closers []func() error
}

func (b *backend) Close(logr *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logr.Warn("close backend resource", zap.Error(err))
		}
	}
}

func openBackend(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*backend, error) {
	b := &backend{}
	switch cfg.Desk.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		if err := database.Migrate(ctx, db); err != nil {
			b.Close(logr)
			return nil, err
		}
		colleges, err := withCollegeCache(ctx, b, cfg, repository.NewCollegeRepository(db), metrics, logr)
		if err != nil {
			b.Close(logr)
			return nil, err
		}
		b.gate = service.NewLoginService(repository.NewAdminRepository(db), repository.NewParticipantRepository(db), colleges, nil, logr)
		b.audit = repository.NewAuditRepository(db)
	default:
		store := memory.NewStore(cfg.Desk.SimulatedLatency)
		if cfg.Desk.SeedDemoData {
			if err := store.SeedDemo(ctx); err != nil {
				return nil, fmt.Errorf("seed demo data: %w", err)
			}
		}
		colleges, err := withCollegeCache(ctx, b, cfg, store.Colleges(), metrics, logr)
		if err != nil {
			b.Close(logr)
			return nil, err
		}
		b.gate = service.NewLoginService(store.Admins(), store.Participants(), colleges, nil, logr)
		b.audit = store.Audit()
	}

	if err := b.gate.Bootstrap(ctx, cfg.Bootstrap); err != nil {
		b.Close(logr)
		return nil, err
	}
	return b, nil
}

// withCollegeCache fronts the college list with Redis when enabled and reachable.
func withCollegeCache(ctx context.Context, b *backend, cfg *config.Config, colleges service.CollegeStore, metrics *service.MetricsService, logr *zap.Logger) (service.CollegeStore, error) {
	if !cfg.Desk.CollegeCache {
		return colleges, nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		logr.Warn("college cache enabled without redis host; serving from store")
		return colleges, nil
	}
	repo := repository.NewCacheRepository(client, logr)
	b.closers = append(b.closers, repo.Close)
	return service.NewCollegeCache(colleges, repo, cfg.Desk.CollegeCacheTTL, metrics, logr), nil
}
