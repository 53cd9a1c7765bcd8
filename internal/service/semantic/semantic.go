// Package semantic turns the similarity backend chain into percentage scores
// for whole documents and for matching sections.
package semantic

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

// Detailed is the result of a detailed semantic match.
type Detailed struct {
	// WeightedScore is the blended percentage in [0,100].
	WeightedScore float64
	// BackendScores holds each answering backend's percentage.
	BackendScores map[string]float64
	// Backends lists the answering backends in precedence order.
	Backends    []domain.BackendScore
	Explanation string
}

// Matcher holds no per-call state and is safe for concurrent use.
type Matcher struct {
	chain   domain.SimilarityChain
	section domain.SimilarityBackend
}

// New builds a Matcher. section scores individual sections; when nil,
// every non-trivial section scores 0.
func New(chain domain.SimilarityChain, section domain.SimilarityBackend) *Matcher {
	return &Matcher{chain: chain, section: section}
}

// Match returns the first available backend's similarity as a percentage.
// Blank input on either side scores 0 without consulting any backend.
func (m *Matcher) Match(ctx domain.Context, resume, jd string) float64 {
	resume, jd = textx.Normalize(resume), textx.Normalize(jd)
	if resume == "" || jd == "" || m.chain == nil {
		return 0
	}
	score, _ := m.chain.Score(ctx, resume, jd)
	return domain.ClampPercent(100 * score)
}

// MatchDetailed blends every available backend.
func (m *Matcher) MatchDetailed(ctx domain.Context, resume, jd string) Detailed {
	out := Detailed{BackendScores: map[string]float64{}}
	resume, jd = textx.Normalize(resume), textx.Normalize(jd)
	if resume == "" || jd == "" || m.chain == nil {
		out.Explanation = "Not enough text to compare."
		return out
	}
	d := m.chain.Detailed(ctx, resume, jd)
	out.WeightedScore = domain.ClampPercent(100 * d.Score)
	for _, b := range d.Backends {
		pct := domain.ClampPercent(100 * b.Score)
		out.BackendScores[b.Name] = pct
		out.Backends = append(out.Backends, domain.BackendScore{Name: b.Name, Score: pct, Weight: b.Weight})
	}
	out.Explanation = explain(out.WeightedScore, out.Backends)
	return out
}

func explain(score float64, backends []domain.BackendScore) string {
	if len(backends) == 0 {
		return "No similarity backend produced a score."
	}
	parts := make([]string, 0, len(backends))
	for _, b := range backends {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", b.Name, b.Score))
	}
	noun := "backends"
	if len(backends) == 1 {
		noun = "backend"
	}
	return fmt.Sprintf("Semantic similarity %.1f%% from %d %s: %s.", score, len(backends), noun, strings.Join(parts, ", "))
}

// SectionScores compares same-named sections with the section backend.
// Every known section gets a score: an empty job-description section means
// no requirement (100); an empty résumé section against a non-empty
// requirement means no evidence (0).
func (m *Matcher) SectionScores(ctx domain.Context, resume, jd domain.Sections) map[domain.SectionName]float64 {
	out := make(map[domain.SectionName]float64, len(domain.AllSections()))
	for _, name := range domain.AllSections() {
		jdText := textx.Normalize(jd.Text(name))
		if jdText == "" {
			out[name] = 100
			continue
		}
		resumeText := textx.Normalize(resume.Text(name))
		if resumeText == "" || m.section == nil {
			out[name] = 0
			continue
		}
		score, err := m.section.Similarity(ctx, resumeText, jdText)
		if err != nil {
			out[name] = 0
			continue
		}
		out[name] = domain.ClampPercent(100 * score)
	}
	return out
}
