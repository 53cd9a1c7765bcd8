package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai"
	"github.com/fairyhunter13/resume-matcher/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/service/ratelimiter"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

// EmbedderFactory builds the embedding client on first use.
type EmbedderFactory func(ctx context.Context) (domain.Embedder, error)

// EmbeddingOptions tunes the neural embedding backend.
type EmbeddingOptions struct {
	// Provider labels the rate limit bucket and logs.
	Provider string
	// Model selects the tokenizer used for the token cap.
	Model       string
	MaxChars    int
	MaxTokens   int
	InitTimeout time.Duration
	Breaker     *ai.CircuitBreaker
	Limiter     ratelimiter.Limiter
}

// Embedding embeds both texts with a pretrained sentence-embedding model and
// returns the cosine similarity of the two vectors.
type Embedding struct {
	handle *Lazy[domain.Embedder]
	opts   EmbeddingOptions
}

// NewEmbedding builds the backend around factory. A nil factory yields a
// backend that is never available.
func NewEmbedding(factory EmbedderFactory, opts EmbeddingOptions) *Embedding {
	if factory == nil {
		factory = func(context.Context) (domain.Embedder, error) {
			return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrBackendUnavailable)
		}
	}
	init := func(ctx context.Context) (domain.Embedder, error) {
		e, err := factory(ctx)
		if err != nil {
			slog.Warn("embedding backend disabled",
				slog.String("provider", opts.Provider),
				slog.Any("error", err))
			return nil, err
		}
		return e, nil
	}
	return &Embedding{handle: NewLazy(init, opts.InitTimeout), opts: opts}
}

// Name implements domain.SimilarityBackend.
func (e *Embedding) Name() string { return NameEmbedding }

// Available reports whether the client initialized and the breaker admits calls.
func (e *Embedding) Available(ctx domain.Context) bool {
	if _, err := e.handle.Get(ctx); err != nil {
		return false
	}
	return e.opts.Breaker == nil || e.opts.Breaker.Ready()
}

// Similarity implements domain.SimilarityBackend.
func (e *Embedding) Similarity(ctx domain.Context, a, b string) (float64, error) {
	client, err := e.handle.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("op=similarity.Embedding: %w: %v", domain.ErrBackendUnavailable, err)
	}
	// local throttling is not an upstream fault and leaves the breaker alone
	if e.opts.Limiter != nil {
		allowed, retryAfter, _ := e.opts.Limiter.Allow(ctx, "embed:"+e.opts.Provider, 1)
		if !allowed {
			return 0, fmt.Errorf("op=similarity.Embedding: %w: retry after %s", domain.ErrUpstreamRateLimit, retryAfter)
		}
	}
	if e.opts.Breaker != nil && !e.opts.Breaker.ShouldAttempt() {
		return 0, fmt.Errorf("op=similarity.Embedding: %w: circuit open", domain.ErrBackendUnavailable)
	}

	texts := []string{e.prepare(a), e.prepare(b)}
	vecs, err := client.Embed(ctx, texts)
	if err == nil && len(vecs) != 2 {
		err = fmt.Errorf("%w: expected 2 vectors, got %d", domain.ErrInternal, len(vecs))
	}
	if err != nil {
		if e.opts.Breaker != nil {
			e.opts.Breaker.RecordFailure()
		}
		return 0, fmt.Errorf("op=similarity.Embedding: %w", err)
	}
	if e.opts.Breaker != nil {
		e.opts.Breaker.RecordSuccess()
	}
	return domain.ClampUnit(cosine32(vecs[0], vecs[1])), nil
}

// prepare bounds the input by characters, then by model tokens.
func (e *Embedding) prepare(s string) string {
	s = textx.TruncateRunes(s, e.opts.MaxChars)
	if e.opts.MaxTokens <= 0 {
		return s
	}
	out, cut, err := tokencount.TruncateDefault(s, e.opts.Model, e.opts.MaxTokens)
	if err != nil {
		return s
	}
	if cut {
		slog.Debug("embedding input truncated",
			slog.String("model", e.opts.Model),
			slog.Int("max_tokens", e.opts.MaxTokens))
	}
	return out
}
