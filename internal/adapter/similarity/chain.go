// Package similarity implements the similarity backend chain: interchangeable
// engines tried in precedence order, with a weighted blend over every
// available engine for detailed reports.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/resume-matcher/internal/observability"
)

// Entry is one backend and its blend weight.
type Entry struct {
	Backend domain.SimilarityBackend
	Weight  float64
}

// Chain is safe for concurrent use once built.
type Chain struct {
	entries     []Entry
	callTimeout time.Duration
}

// NewChain keeps entries in the given precedence order, highest fidelity
// first. callTimeout <= 0 leaves backend calls bounded only by the caller.
func NewChain(callTimeout time.Duration, entries ...Entry) *Chain {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Backend != nil {
			kept = append(kept, e)
		}
	}
	return &Chain{entries: kept, callTimeout: callTimeout}
}

var _ domain.SimilarityChain = (*Chain)(nil)

// Score returns the score of the first available backend whose call
// succeeds, and its name. It never averages; when every backend fails the
// score is 0 and the name empty.
func (c *Chain) Score(ctx domain.Context, a, b string) (float64, string) {
	for _, e := range c.entries {
		if ctx.Err() != nil {
			return 0, ""
		}
		score, err := c.call(ctx, e.Backend, a, b)
		if err != nil {
			continue
		}
		return score, e.Backend.Name()
	}
	return 0, ""
}

// Detailed queries every available backend concurrently and returns the mean
// weighted over the backends that answered. Weights are re-normalized over
// those backends; if all of their weights are zero the plain mean is used.
func (c *Chain) Detailed(ctx domain.Context, a, b string) domain.SimilarityDetail {
	type outcome struct {
		score float64
		ok    bool
	}
	results := make([]outcome, len(c.entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range c.entries {
		g.Go(func() error {
			score, err := c.call(gctx, e.Backend, a, b)
			results[i] = outcome{score: score, ok: err == nil}
			return nil
		})
	}
	_ = g.Wait()

	var detail domain.SimilarityDetail
	var weighted, weights, plain float64
	for i, e := range c.entries {
		if !results[i].ok {
			continue
		}
		detail.Backends = append(detail.Backends, domain.BackendScore{
			Name:   e.Backend.Name(),
			Score:  results[i].score,
			Weight: e.Weight,
		})
		weighted += results[i].score * e.Weight
		weights += e.Weight
		plain += results[i].score
	}
	switch {
	case len(detail.Backends) == 0:
	case weights > 0:
		detail.Score = domain.ClampUnit(weighted / weights)
	default:
		detail.Score = domain.ClampUnit(plain / float64(len(detail.Backends)))
	}
	return detail
}

// Backends reports each backend's capability. It probes availability, which
// initializes lazy handles.
func (c *Chain) Backends(ctx domain.Context) []domain.BackendInfo {
	out := make([]domain.BackendInfo, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, domain.BackendInfo{
			Name:      e.Backend.Name(),
			Available: e.Backend.Available(ctx),
			Weight:    e.Weight,
		})
	}
	return out
}

// call runs one backend, turning unavailability, errors and panics into an
// error the chain skips over.
func (c *Chain) call(ctx context.Context, be domain.SimilarityBackend, a, b string) (score float64, err error) {
	name := be.Name()
	lg := obsctx.LoggerFromContext(ctx)
	if !be.Available(ctx) {
		observability.ObserveBackendCall(name, "unavailable", 0)
		return 0, fmt.Errorf("op=similarity.Chain: %s: %w", name, domain.ErrBackendUnavailable)
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	ctx, span := observability.Tracer().Start(ctx, "similarity."+name)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("op=similarity.Chain: %s panicked: %v", name, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.ObserveBackendCall(name, "error", time.Since(start).Seconds())
			lg.Warn("similarity backend failed, falling back",
				slog.String("backend", name),
				slog.Any("error", err))
			return
		}
		span.SetAttributes(attribute.Float64("similarity.score", score))
		observability.ObserveBackendCall(name, "ok", time.Since(start).Seconds())
	}()

	score, err = be.Similarity(ctx, a, b)
	if err != nil {
		return 0, err
	}
	return domain.ClampUnit(score), nil
}
