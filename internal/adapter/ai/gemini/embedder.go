// Package gemini implements domain.Embedder with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

const defaultEmbedModel = "text-embedding-004"

// embedModels is the slice of *genai.Models the embedder needs.
type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder embeds texts with a Gemini embedding model.
type Embedder struct {
	models embedModels
	model  string
}

// New creates a client configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", domain.ErrBackendUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithModels(client.Models, model), nil
}

func newWithModels(m embedModels, model string) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbedModel
	}
	return &Embedder{models: m, model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

// Embed sends all texts in one request and returns vectors in input order.
func (e *Embedder) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.Text(t)...)
	}

	start := time.Now()
	result, err := e.models.EmbedContent(ctx, e.model, contents, nil)
	observability.AIRequestsTotal.WithLabelValues("gemini", "embed").Inc()
	observability.AIRequestDuration.WithLabelValues("gemini", "embed").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("op=gemini.Embed: failed to generate embedding: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini returned an unexpected embedding count", domain.ErrInternal)
	}
	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: gemini returned an empty embedding at %d", domain.ErrInternal, i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
