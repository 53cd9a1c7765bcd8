package ai

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/observability"
)

// redisEmbedCache shares embedding vectors across processes. Redis failures
// fail open: the base embedder is asked instead and the error is logged.
type redisEmbedCache struct {
	base   domain.Embedder
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisEmbedCache wraps base with a Redis-backed cache. Keys are
// prefix+sha256(text). A nil client returns base unmodified.
func NewRedisEmbedCache(base domain.Embedder, rdb *redis.Client, prefix string, ttl time.Duration) domain.Embedder {
	if rdb == nil || base == nil {
		return base
	}
	return &redisEmbedCache{base: base, rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *redisEmbedCache) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	lg := observability.LoggerFromContext(ctx)
	res := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.prefix + keyFor(t)
	}

	var vals []any
	if len(keys) > 0 {
		var err error
		vals, err = c.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			lg.Warn("embedding cache read failed", "op", "ai.redisEmbedCache.Embed", "error", err)
			vals = nil
		}
	}

	missIdx := make([]int, 0)
	missTexts := make([]string, 0)
	for i := range texts {
		if vec, ok := decodeVector(vals, i); ok {
			res[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	if len(missIdx) == 0 {
		return res, nil
	}

	vecs, err := c.base.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, countMismatch(len(missTexts), len(vecs))
	}
	pipe := c.rdb.Pipeline()
	for j, idx := range missIdx {
		res[idx] = vecs[j]
		b, err := json.Marshal(vecs[j])
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[idx], b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		lg.Warn("embedding cache write failed", "op", "ai.redisEmbedCache.Embed", "error", err)
	}
	return res, nil
}

func decodeVector(vals []any, i int) ([]float32, bool) {
	if i >= len(vals) || vals[i] == nil {
		return nil, false
	}
	s, ok := vals[i].(string)
	if !ok {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal([]byte(s), &vec); err != nil || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}
