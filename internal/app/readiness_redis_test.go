package app

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

type okPing struct{}

func (okPing) Err() error { return nil }

type errPing struct{ err error }

func (e errPing) Err() error { return e.err }

type fakeRedis struct {
	ok  bool
	err error
}

func (f fakeRedis) Ping(_ context.Context) RedisPingResult {
	if f.ok {
		return okPing{}
	}
	return errPing{err: f.err}
}

type staticBackends []domain.BackendInfo

func (s staticBackends) Backends(domain.Context) []domain.BackendInfo { return s }

func TestBuildReadinessChecks_Redis(t *testing.T) {
	checks := BuildReadinessChecks(context.Background(), fakeRedis{ok: true}, nil)
	require.Len(t, checks, 1)
	assert.True(t, checks[0].OK)

	checks = BuildReadinessChecks(context.Background(), fakeRedis{err: context.DeadlineExceeded}, nil)
	assert.False(t, checks[0].OK)
	assert.Contains(t, checks[0].Details, "deadline")

	checks = BuildReadinessChecks(context.Background(), nil, nil)
	assert.True(t, checks[0].OK)
	assert.Equal(t, "not configured", checks[0].Details)
}

func TestBuildReadinessChecks_Backends(t *testing.T) {
	checks := BuildReadinessChecks(context.Background(), nil, staticBackends{
		{Name: "embedding", Available: false, Weight: 0.5},
		{Name: "tfidf", Available: true, Weight: 0.1},
	})
	require.Len(t, checks, 3)
	assert.Equal(t, ReadinessCheck{Name: "backend:embedding", OK: false, Details: "unavailable; chain falls back"}, checks[1])
	assert.Equal(t, ReadinessCheck{Name: "backend:tfidf", OK: true, Details: "weight 0.10"}, checks[2])
}

func TestApp_ReadinessWithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	a, err := New(cfg, testPolicy())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	checks := a.Readiness(context.Background())
	require.NotEmpty(t, checks)
	assert.Equal(t, "redis", checks[0].Name)
	assert.True(t, checks[0].OK)
}
