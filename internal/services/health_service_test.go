package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybench/internal/cache"
	"surveybench/internal/store"
	"surveybench/pkg/contracts/domain"
)

type fixedHub struct{ clients int }

func (h fixedHub) ClientCount() int { return h.clients }

func newHealthFixture(t *testing.T) (*HealthService, *cache.Cache) {
	t.Helper()
	s := store.NewMemStore()
	s.AddSurvey(domain.Survey{ID: "mgma-2024", Source: "MGMA", Year: "2024"}, nil)
	c := cache.New(time.Hour, discardLogger())
	return NewHealthService("v9.9.9", "2024-06-01T12:00:00Z", s, c, fixedHub{clients: 3}, discardLogger()), c
}

func TestHealthServiceHealthCheck(t *testing.T) {
	hs, _ := newHealthFixture(t)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "v9.9.9", status.Version)
}

func TestHealthServiceReadinessCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("ready with store, cold cache, and hub", func(t *testing.T) {
		hs, _ := newHealthFixture(t)

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)

		sh, ok := status.Services["store"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", sh.Status)
		assert.Contains(t, sh.Message, "1 surveys")

		ch, ok := status.Services["cache"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", ch.Status)
		assert.Equal(t, "cache cold", ch.Message)

		wh, ok := status.Services["websocket"].(ServiceHealth)
		require.True(t, ok)
		assert.Contains(t, wh.Message, "3 connected clients")
	})

	t.Run("warm cache reports its version", func(t *testing.T) {
		hs, c := newHealthFixture(t)
		c.Put(nil, domain.FilterOptions{})

		status := hs.ReadinessCheck(ctx)
		ch := status.Services["cache"].(ServiceHealth)
		assert.Contains(t, ch.Message, "version 1")
	})

	t.Run("not ready without a store", func(t *testing.T) {
		hs := NewHealthService("v9.9.9", "", nil, nil, nil, discardLogger())

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
	})
}

func TestHealthServiceLivenessCheck(t *testing.T) {
	hs, _ := newHealthFixture(t)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.NotEmpty(t, status.Runtime["go_version"])
}

func TestHealthServiceVersion(t *testing.T) {
	hs, _ := newHealthFixture(t)

	info := hs.Version()
	assert.Equal(t, "v9.9.9", info["version"])
	assert.Equal(t, "2024-06-01T12:00:00Z", info["build_time"])
	assert.NotEmpty(t, info["start_time"])
}
