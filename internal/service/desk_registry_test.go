package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/pkg/config"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
)

func TestDeskRegistryExpiredDeskIsClosed(t *testing.T) {
	ctx := context.Background()
	gate, _ := newSeededGate(t)
	metrics := NewMetricsService()
	registry := NewDeskRegistry(gate, metrics, nil)
	t.Cleanup(registry.CloseAll)

	stale, err := registry.Open(ctx, "admin", "admin")
	require.NoError(t, err)
	fresh, err := registry.Open(ctx, "admin", "admin")
	require.NoError(t, err)
	require.NoError(t, registry.SetExpiry(stale.ID, time.Now().Add(-time.Second)))
	require.NoError(t, registry.SetExpiry(fresh.ID, time.Now().Add(time.Hour)))

	_, err = registry.Get(stale.ID)
	assert.ErrorIs(t, err, appErrors.ErrDeskClosed)
	_, err = registry.Get(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Count())

	assert.Equal(t, 1, registry.Sweep(time.Now()))
	assert.Equal(t, 1, registry.Count())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.openDesks))
	assert.ErrorIs(t, registry.Close(stale.ID), appErrors.ErrDeskClosed)
	assert.ErrorIs(t, registry.SetExpiry(stale.ID, time.Now()), appErrors.ErrDeskClosed)

	assert.Equal(t, 1, registry.Sweep(time.Now().Add(2*time.Hour)))
	assert.Equal(t, 0, registry.Count())
}

func TestDeskRegistryDeskWithoutExpiryStaysOpen(t *testing.T) {
	gate, _ := newSeededGate(t)
	registry := NewDeskRegistry(gate, NewMetricsService(), nil)
	t.Cleanup(registry.CloseAll)

	d, err := registry.Open(context.Background(), "admin", "admin")
	require.NoError(t, err)

	assert.Zero(t, registry.Sweep(time.Now().Add(24*time.Hour)))
	_, err = registry.Get(d.ID)
	assert.NoError(t, err)
}

func TestSweeperClosesDeskWhenTokenExpires(t *testing.T) {
	f := newFrontDeskFixture(t, nil)
	short := NewDeskTokenService(config.DeskTokenConfig{Secret: "test-secret", TTL: 50 * time.Millisecond, Issuer: "regdesk"})
	front := NewFrontDesk(f.registry, short, nil, nil, nil)

	resp, err := front.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.registry.Count())

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan error, 1)
	go func() { swept <- f.registry.RunSweeper(ctx, 10*time.Millisecond) }()

	assert.Eventually(t, func() bool { return f.registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	_, err = front.Status(context.Background(), resp.DeskID)
	assert.ErrorIs(t, err, appErrors.ErrDeskClosed)

	cancel()
	require.NoError(t, <-swept)
}
