package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

const collegeListKey = "regdesk:colleges:all"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CollegeCache wraps a college store and serves the full college list from Redis.
// Cache failures never fail the desk operation; the store stays authoritative.
type CollegeCache struct {
	store   CollegeStore
	repo    CacheRepository
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCollegeCache constructs the cache decorator.
func NewCollegeCache(store CollegeStore, repo CacheRepository, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *CollegeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollegeCache{store: store, repo: repo, ttl: ttl, metrics: metrics, logger: logger}
}

// Create stores the college and drops the cached list.
func (c *CollegeCache) Create(ctx context.Context, name string) (models.College, error) {
	college, err := c.store.Create(ctx, name)
	if err != nil {
		return models.College{}, err
	}
	c.invalidate(ctx)
	return college, nil
}

// FindByID always reads the store.
func (c *CollegeCache) FindByID(ctx context.Context, id int64) (models.College, error) {
	return c.store.FindByID(ctx, id)
}

// List returns the cached list or loads and caches it.
func (c *CollegeCache) List(ctx context.Context) ([]models.College, error) {
	start := time.Now()
	var cached []models.College
	err := c.repo.Get(ctx, collegeListKey, &cached)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("college cache read failed", zap.Error(err))
	}

	colleges, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.repo.Set(ctx, collegeListKey, colleges, c.ttl); err != nil {
		c.logger.Warn("college cache write failed", zap.Error(err))
	}
	return colleges, nil
}

func (c *CollegeCache) invalidate(ctx context.Context) {
	if err := c.repo.Delete(ctx, collegeListKey); err != nil {
		c.logger.Warn("college cache invalidation failed", zap.Error(err))
	}
}
