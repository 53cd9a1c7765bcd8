package similarity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/openai"
	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/service/ratelimiter"
)

const embedCachePrefix = "embed:v1:"

// Registry owns the backend handles for one process. It is built once at
// startup and handed to the engine; nothing here is package-global.
type Registry struct {
	chain   *Chain
	section *TFIDF
	breaker *ai.CircuitBreaker
	rdb     *redis.Client
}

// NewRegistry wires the backends described by cfg. extraStopWords extends
// the built-in English list. No network call is made here: the embedding
// client is created lazily on first use.
func NewRegistry(cfg config.Config, extraStopWords []string) (*Registry, error) {
	sw := EnglishStopWords(extraStopWords...)
	r := &Registry{
		section: NewTFIDF(SectionTFIDFOptions(sw)),
		breaker: ai.NewCircuitBreaker(NameEmbedding, cfg.BreakerFailureThreshold, cfg.BreakerRecoveryTimeout),
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("op=similarity.NewRegistry: parse REDIS_URL: %w", err)
		}
		r.rdb = redis.NewClient(opts)
	}

	var limiter ratelimiter.Limiter
	if l := ratelimiter.NewRedisLuaLimiter(r.rdb, "rate:", map[string]ratelimiter.BucketConfig{
		"embed:" + cfg.Provider(): ratelimiter.NewBucketConfigFromPerMinute(cfg.EmbedRatePerMinute),
	}); l != nil {
		limiter = l
	}

	embedding := NewEmbedding(r.embedderFactory(cfg), EmbeddingOptions{
		Provider:    cfg.Provider(),
		Model:       embedModel(cfg),
		MaxChars:    cfg.MaxBackendInputChars,
		MaxTokens:   cfg.MaxEmbedTokens,
		InitTimeout: cfg.BackendInitTimeout,
		Breaker:     r.breaker,
		Limiter:     limiter,
	})
	entries := []Entry{{Backend: embedding, Weight: cfg.WeightEmbedding}}
	if cfg.EnablePipeline {
		entries = append(entries, Entry{
			Backend: NewPipeline(sw, cfg.MaxBackendInputChars, cfg.BackendInitTimeout),
			Weight:  cfg.WeightPipeline,
		})
	}
	entries = append(entries, Entry{Backend: NewTFIDF(DocumentTFIDFOptions(sw)), Weight: cfg.WeightTFIDF})
	r.chain = NewChain(cfg.BackendCallTimeout, entries...)
	return r, nil
}

// Chain returns the document-level backend chain.
func (r *Registry) Chain() *Chain { return r.chain }

// SectionBackend returns the statistical backend configured for sections.
func (r *Registry) SectionBackend() domain.SimilarityBackend { return r.section }

// BreakerStats snapshots the embedding circuit breaker.
func (r *Registry) BreakerStats() ai.BreakerStats { return r.breaker.Stats() }

// Redis returns the shared Redis client, or nil when REDIS_URL is unset.
func (r *Registry) Redis() *redis.Client { return r.rdb }

// Close releases the Redis connection, if any.
func (r *Registry) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *Registry) embedderFactory(cfg config.Config) EmbedderFactory {
	var build EmbedderFactory
	switch cfg.Provider() {
	case config.EmbeddingsProviderOpenAI:
		build = func(context.Context) (domain.Embedder, error) {
			e, err := openai.New(cfg)
			if err != nil {
				return nil, err
			}
			return e, nil
		}
	case config.EmbeddingsProviderGemini:
		build = func(ctx context.Context) (domain.Embedder, error) {
			e, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel)
			if err != nil {
				return nil, err
			}
			return e, nil
		}
	default:
		return nil
	}
	return func(ctx context.Context) (domain.Embedder, error) {
		base, err := build(ctx)
		if err != nil {
			return nil, err
		}
		// redis sits under the in-process cache so local hits skip the network
		shared := ai.NewRedisEmbedCache(base, r.rdb, embedCachePrefix+embedModel(cfg)+":", cfg.RedisCacheTTL)
		slog.Info("embedding backend ready",
			slog.String("provider", cfg.Provider()),
			slog.String("model", embedModel(cfg)),
			slog.Bool("shared_cache", r.rdb != nil))
		return ai.NewEmbedCache(shared, cfg.EmbedCacheSize), nil
	}
}

func embedModel(cfg config.Config) string {
	if cfg.Provider() == config.EmbeddingsProviderGemini {
		return cfg.GeminiEmbedModel
	}
	return cfg.EmbeddingsModel
}
