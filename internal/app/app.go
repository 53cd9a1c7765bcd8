// Package app wires configuration into a ready-to-use matching engine.
package app

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/similarity"
	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/service/lexical"
	"github.com/fairyhunter13/resume-matcher/internal/service/sections"
	"github.com/fairyhunter13/resume-matcher/internal/service/semantic"
	"github.com/fairyhunter13/resume-matcher/internal/service/verdict"
	"github.com/fairyhunter13/resume-matcher/internal/usecase"
)

// App owns the backend registry and the services built on it.
type App struct {
	Registry  *similarity.Registry
	Evaluator usecase.EvaluateService
}

// New builds the engine from cfg and the optional policy file contents.
func New(cfg config.Config, policy config.Policy) (*App, error) {
	opts, err := verdictOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("op=app.New: %w", err)
	}
	reg, err := similarity.NewRegistry(cfg, policy.ExtraStopWords)
	if err != nil {
		return nil, fmt.Errorf("op=app.New: %w", err)
	}
	extractor := sections.New(policy.SectionKeywords, policy.MaxHeaderWords)
	sem := semantic.New(reg.Chain(), reg.SectionBackend())
	svc := usecase.NewEvaluateService(lexical.New(cfg.FuzzyThreshold), sem, extractor, reg.Chain(), opts...)

	slog.Debug("matching engine ready",
		slog.String("embeddings_provider", cfg.Provider()),
		slog.Bool("pipeline", cfg.EnablePipeline),
		slog.Bool("redis", cfg.RedisURL != ""),
		slog.String("aggregation_policy", cfg.AggregationPolicy),
		slog.String("tier_scale", cfg.TierScale),
		slog.Int("section_overrides", len(policy.SectionKeywords)))
	return &App{Registry: reg, Evaluator: svc}, nil
}

// verdictOptions resolves the aggregation settings. Empty names keep the
// per-report defaults.
func verdictOptions(cfg config.Config) ([]usecase.Option, error) {
	opts := []usecase.Option{usecase.WithMaxGapTerms(cfg.MaxGapTerms)}
	if cfg.AggregationPolicy != "" {
		p, err := verdict.PolicyByName(cfg.AggregationPolicy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithPolicy(p))
	}
	if cfg.TierScale != "" {
		sc, err := verdict.ScaleByName(cfg.TierScale)
		if err != nil {
			return nil, err
		}
		opts = append(opts, usecase.WithTierScale(sc))
	}
	return opts, nil
}

// Close releases shared connections.
func (a *App) Close() error {
	if a == nil || a.Registry == nil {
		return nil
	}
	return a.Registry.Close()
}
