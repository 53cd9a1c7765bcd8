// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/resume-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	obsctx "github.com/fairyhunter13/resume-matcher/internal/observability"
	"github.com/fairyhunter13/resume-matcher/internal/service/lexical"
	"github.com/fairyhunter13/resume-matcher/internal/service/semantic"
	"github.com/fairyhunter13/resume-matcher/internal/service/verdict"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

// EvaluateService composes the matchers and the aggregator into one report.
// It holds no per-call state; concurrent evaluations share it freely.
type EvaluateService struct {
	Lexical  *lexical.Matcher
	Semantic *semantic.Matcher
	Sections domain.SectionExtractor
	Chain    domain.SimilarityChain

	policy      verdict.Policy
	scale       *verdict.Scale
	maxGapTerms int
	standard    *verdict.Aggregator
	deep        *verdict.Aggregator
}

// Option configures an EvaluateService.
type Option func(*EvaluateService)

// WithPolicy fixes the aggregation policy for every report. Without it the
// aggregator picks balanced, or skill_weighted when a skill score exists.
func WithPolicy(p verdict.Policy) Option {
	return func(s *EvaluateService) { s.policy = p }
}

// WithTierScale uses sc at every depth instead of the depth defaults.
func WithTierScale(sc verdict.Scale) Option {
	return func(s *EvaluateService) { s.scale = &sc }
}

// WithMaxGapTerms caps the terms listed in the keyword gap summary.
func WithMaxGapTerms(n int) Option {
	return func(s *EvaluateService) { s.maxGapTerms = n }
}

// NewEvaluateService constructs an EvaluateService with its dependencies.
// By default quick and standard reports use the three-tier scale, deep
// reports the five-tier one.
func NewEvaluateService(lex *lexical.Matcher, sem *semantic.Matcher, ex domain.SectionExtractor, chain domain.SimilarityChain, opts ...Option) EvaluateService {
	if lex == nil {
		lex = lexical.New(lexical.DefaultFuzzyThreshold)
	}
	s := EvaluateService{
		Lexical:  lex,
		Semantic: sem,
		Sections: ex,
		Chain:    chain,
	}
	for _, o := range opts {
		o(&s)
	}
	standard, deep := verdict.ThreeTier, verdict.FiveTier
	if s.scale != nil {
		standard, deep = *s.scale, *s.scale
	}
	s.standard = verdict.New(standard, verdict.WithMaxGapTerms(s.maxGapTerms))
	s.deep = verdict.New(deep, verdict.WithMaxGapTerms(s.maxGapTerms))
	return s
}

// Evaluate scores resume against jd. Sections are extracted for deep reports.
func (s EvaluateService) Evaluate(ctx domain.Context, resume, jd string, depth domain.Depth) (domain.Report, error) {
	return s.evaluate(ctx, resume, jd, nil, nil, depth)
}

// EvaluateWithSections uses caller-supplied section maps for deep reports
// instead of extracting them. Unknown section keys are dropped; a nil map
// falls back to extraction for that document.
func (s EvaluateService) EvaluateWithSections(ctx domain.Context, resume, jd string, resumeSections, jdSections map[string][]string, depth domain.Depth) (domain.Report, error) {
	var rs, js domain.Sections
	if resumeSections != nil {
		rs = domain.SectionsFromMap(resumeSections)
	}
	if jdSections != nil {
		js = domain.SectionsFromMap(jdSections)
	}
	return s.evaluate(ctx, resume, jd, rs, js, depth)
}

// Backends reports the similarity backends and their availability.
func (s EvaluateService) Backends(ctx domain.Context) []domain.BackendInfo {
	if s.Chain == nil {
		return nil
	}
	return s.Chain.Backends(ctx)
}

func (s EvaluateService) evaluate(ctx domain.Context, resume, jd string, resumeSecs, jdSecs domain.Sections, depth domain.Depth) (domain.Report, error) {
	parsed, err := domain.ParseDepth(string(depth))
	if err != nil {
		return domain.Report{}, fmt.Errorf("op=usecase.Evaluate: %w: depth %q", err, depth)
	}
	depth = parsed
	// extracted text may carry NULs and other control bytes
	resume, jd = textx.SanitizeText(resume), textx.SanitizeText(jd)
	lg := obsctx.LoggerFromContext(ctx)
	ctx, span := observability.Tracer().Start(ctx, "usecase.Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("evaluation.depth", string(depth)),
		attribute.Int("evaluation.resume_chars", len(resume)),
		attribute.Int("evaluation.jd_chars", len(jd)),
	)
	start := time.Now()

	var (
		match       domain.MatchResult
		semanticTxt string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if depth == domain.DepthQuick {
			match.HardScore, match.MissingTerms = lexical.HardMatch(resume, jd)
			return nil
		}
		res := s.Lexical.Enhanced(resume, jd)
		match.HardScore, match.MissingTerms, match.FuzzyMatches = res.Score, res.Missing, res.FuzzyMatches
		return nil
	})
	g.Go(func() error {
		if s.Semantic == nil {
			return nil
		}
		if depth == domain.DepthQuick {
			match.SemanticScore = s.Semantic.Match(gctx, resume, jd)
			return nil
		}
		d := s.Semantic.MatchDetailed(gctx, resume, jd)
		match.SemanticScore, match.BackendScores, semanticTxt = d.WeightedScore, d.BackendScores, d.Explanation
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return domain.Report{}, fmt.Errorf("op=usecase.Evaluate: %w", err)
	}

	agg := s.standard
	if depth == domain.DepthDeep {
		agg = s.deep
		if resumeSecs == nil {
			resumeSecs = domain.NewDocument(resume, s.Sections).Sections
		}
		if jdSecs == nil {
			jdSecs = domain.NewDocument(jd, s.Sections).Sections
		}
		if s.Semantic != nil {
			match.SectionScores = s.Semantic.SectionScores(ctx, resumeSecs, jdSecs)
		}
		if skill, ok := s.Lexical.SkillScore(resumeSecs.Text(domain.SectionSkills), jdSecs.Text(domain.SectionSkills)); ok {
			match.SkillScore = &skill
		}
	}

	v, err := agg.Aggregate(verdict.Input{
		HardScore:     match.HardScore,
		SemanticScore: match.SemanticScore,
		SkillScore:    match.SkillScore,
		MissingTerms:  match.MissingTerms,
		Policy:        s.policy,
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("op=usecase.Evaluate: %w", err)
	}

	report := domain.Report{Depth: depth, Match: match, Verdict: v, SemanticExplanation: semanticTxt}
	if depth != domain.DepthQuick {
		report.Backends = s.Backends(ctx)
	}

	observability.ObserveEvaluation(string(depth), string(v.Tier), match.HardScore, match.SemanticScore, v.CombinedScore)
	span.SetAttributes(
		attribute.Float64("evaluation.combined_score", v.CombinedScore),
		attribute.String("evaluation.tier", string(v.Tier)),
	)
	lg.Info("evaluation completed",
		slog.String("depth", string(depth)),
		slog.Float64("hard_score", match.HardScore),
		slog.Float64("semantic_score", match.SemanticScore),
		slog.Float64("combined_score", v.CombinedScore),
		slog.String("tier", string(v.Tier)),
		slog.Int("missing_terms", len(match.MissingTerms)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return report, nil
}
