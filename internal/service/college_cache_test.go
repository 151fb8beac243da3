package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/repository/memory"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func TestCollegeCacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(0)
	_, err := store.Colleges().Create(ctx, "NIT Calicut")
	require.NoError(t, err)

	repo := newMapCache()
	metrics := NewMetricsService()
	cache := NewCollegeCache(store.Colleges(), repo, time.Minute, metrics, nil)

	first, err := cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.sets)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))

	second, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.sets)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))

	added, err := cache.Create(ctx, "GEC Kannur")
	require.NoError(t, err)
	assert.NotContains(t, repo.entries, collegeListKey)

	third, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, added, third[1])

	found, err := cache.FindByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, found)
}

func TestCollegeCacheFallsBackOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(0)
	_, err := store.Colleges().Create(ctx, "NIT Calicut")
	require.NoError(t, err)

	repo := newMapCache()
	repo.getErr = errors.New("redis unavailable")
	cache := NewCollegeCache(store.Colleges(), repo, 0, nil, nil)

	colleges, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, colleges, 1)
}

func TestDeskSessionListsThroughCollegeCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(0)
	repo := newMapCache()
	cache := NewCollegeCache(store.Colleges(), repo, time.Minute, nil, nil)
	s := NewDeskSession(testAdmin, store.Participants(), cache, nil, nil)

	_, err := s.AddCollege(ctx, "GEC Kannur")
	require.NoError(t, err)
	_, err = s.AddCollege(ctx, "GEC Thrissur")
	require.NoError(t, err)

	gec, err := s.ListColleges(ctx, "gec")
	require.NoError(t, err)
	assert.Len(t, gec, 2)
	assert.Contains(t, repo.entries, collegeListKey)

	_, err = s.AddCollege(ctx, "GEC Palakkad")
	require.NoError(t, err)
	gec, err = s.ListColleges(ctx, "GEC")
	require.NoError(t, err)
	assert.Len(t, gec, 3)
}
