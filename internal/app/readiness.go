package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// ReadinessCheck represents a single readiness probe result.
type ReadinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// RedisPingResult is the minimal return type of a Redis client's Ping.
type RedisPingResult interface{ Err() error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) RedisPingResult
}

type redisAdapter struct{ c *redis.Client }

func (r redisAdapter) Ping(ctx context.Context) RedisPingResult { return r.c.Ping(ctx) }

// BackendLister reports similarity backend capabilities.
type BackendLister interface {
	Backends(ctx domain.Context) []domain.BackendInfo
}

// BuildReadinessChecks probes the optional Redis cache and every similarity
// backend. A nil rdb reports Redis as not configured, which is not a failure.
func BuildReadinessChecks(ctx context.Context, rdb RedisClient, backends BackendLister) []ReadinessCheck {
	checks := make([]ReadinessCheck, 0, 4)
	if rdb == nil {
		checks = append(checks, ReadinessCheck{Name: "redis", OK: true, Details: "not configured"})
	} else if err := rdb.Ping(ctx).Err(); err != nil {
		checks = append(checks, ReadinessCheck{Name: "redis", OK: false, Details: err.Error()})
	} else {
		checks = append(checks, ReadinessCheck{Name: "redis", OK: true})
	}
	if backends == nil {
		return checks
	}
	for _, b := range backends.Backends(ctx) {
		c := ReadinessCheck{Name: "backend:" + b.Name, OK: b.Available}
		if !b.Available {
			c.Details = "unavailable; chain falls back"
		} else {
			c.Details = fmt.Sprintf("weight %.2f", b.Weight)
		}
		checks = append(checks, c)
	}
	return checks
}

// Readiness probes the app's own dependencies.
func (a *App) Readiness(ctx context.Context) []ReadinessCheck {
	var rdb RedisClient
	if c := a.Registry.Redis(); c != nil {
		rdb = redisAdapter{c}
	}
	return BuildReadinessChecks(ctx, rdb, a.Registry.Chain())
}
