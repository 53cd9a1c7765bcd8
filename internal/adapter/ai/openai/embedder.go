// Package openai implements domain.Embedder against an OpenAI-compatible
// embeddings endpoint.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Embedder calls POST {base}/embeddings.
type Embedder struct {
	cfg    config.Config
	hc     *http.Client
	apiKey string
	base   string
	model  string
}

// New constructs an embedder. The API key and model must be set.
func New(cfg config.Config) (*Embedder, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" || strings.TrimSpace(cfg.EmbeddingsModel) == "" {
		return nil, fmt.Errorf("op=openai.New: %w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrBackendUnavailable)
	}
	timeout := cfg.BackendCallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Embedder{
		cfg:    cfg,
		hc:     &http.Client{Timeout: timeout},
		apiKey: cfg.OpenAIAPIKey,
		base:   strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:  cfg.EmbeddingsModel,
	}, nil
}

// Model returns the embeddings model name.
func (e *Embedder) Model() string { return e.model }

func (e *Embedder) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := e.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order. 429 and 5xx
// responses are retried with exponential backoff; other 4xx are permanent.
func (e *Embedder) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	lg := slog.With(slog.String("provider", "openai"), slog.String("op", "embed"), slog.String("model", e.model))
	b, err := json.Marshal(map[string]any{"model": e.model, "input": texts})
	if err != nil {
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	endpoint := e.base + "/embeddings"

	var out embeddingResponse
	var rateLimited bool
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+e.apiKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := e.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("openai", "embed").Inc()
		observability.AIRequestDuration.WithLabelValues("openai", "embed").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			rateLimited = true
			lg.Warn("ai provider rate limited", slog.Int("status", resp.StatusCode), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			lg.Warn("ai provider 4xx", slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", readSnippet(resp.Body, 512)))
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			lg.Error("ai provider non-2xx", slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", readSnippet(resp.Body, 512)))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		rateLimited = false
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			lg.Error("ai provider decode error", slog.Any("error", err))
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(e.backoffConfig(), ctx)); err != nil {
		lg.Error("embeddings failed after retries", slog.Any("error", err))
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("op=openai.Embed: %w: %v", domain.ErrUpstreamTimeout, err)
		case rateLimited:
			return nil, fmt.Errorf("op=openai.Embed: %w: %v", domain.ErrUpstreamRateLimit, err)
		}
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=openai.Embed: %w: openai returned %d embeddings for %d inputs", domain.ErrInternal, len(out.Data), len(texts))
	}

	// the API documents index; keep input order even if the server reorders
	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	res := make([][]float32, len(out.Data))
	for i := range out.Data {
		v := make([]float32, len(out.Data[i].Embedding))
		for j, f := range out.Data[i].Embedding {
			v[j] = float32(f)
		}
		res[i] = v
	}
	return res, nil
}

// readSnippet reads up to n bytes from r.
func readSnippet(r io.Reader, n int64) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}
