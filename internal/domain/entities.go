// Package domain defines the core types, ports and error taxonomy of the matching engine.
package domain

import (
	"context"
	"errors"
	"math"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrEmptyVocabulary    = errors.New("empty vocabulary")
	ErrUpstreamTimeout    = errors.New("upstream timeout")
	ErrUpstreamRateLimit  = errors.New("upstream rate limit")
	ErrInternal           = errors.New("internal error")
)

// SectionName tags a heuristic document section.
type SectionName string

const (
	SectionExperience     SectionName = "experience"
	SectionSkills         SectionName = "skills"
	SectionEducation      SectionName = "education"
	SectionProjects       SectionName = "projects"
	SectionCertifications SectionName = "certifications"
	SectionSummary        SectionName = "summary"
)

var allSections = []SectionName{
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionProjects,
	SectionCertifications,
	SectionSummary,
}

// AllSections returns every known section in its fixed scan order.
func AllSections() []SectionName {
	out := make([]SectionName, len(allSections))
	copy(out, allSections)
	return out
}

// ParseSectionName maps a free-form key onto a known section.
func ParseSectionName(s string) (SectionName, bool) {
	for _, n := range allSections {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// Sections holds ordered content lines per section. A missing key means the
// section was not found, which is a valid state.
type Sections map[SectionName][]string

// SectionsFromMap converts a caller-supplied map, dropping unknown keys.
func SectionsFromMap(m map[string][]string) Sections {
	out := make(Sections, len(m))
	for k, lines := range m {
		name, ok := ParseSectionName(k)
		if !ok {
			continue
		}
		cp := make([]string, len(lines))
		copy(cp, lines)
		out[name] = cp
	}
	return out
}

// Text joins the lines of a section with newlines.
func (s Sections) Text(name SectionName) string {
	lines := s[name]
	if len(lines) == 0 {
		return ""
	}
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	b := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, l...)
	}
	return string(b)
}

// Document is one input text with its extracted sections.
// Invariants: immutable after construction; owned by a single analysis.
type Document struct {
	RawText  string
	Sections Sections
}

// SectionExtractor splits raw text into sections.
type SectionExtractor interface {
	Extract(text string) Sections
}

// NewDocument builds a Document, extracting sections when an extractor is given.
func NewDocument(raw string, ex SectionExtractor) Document {
	d := Document{RawText: raw, Sections: Sections{}}
	if ex != nil {
		d.Sections = ex.Extract(raw)
	}
	return d
}

// SkillSet is a set of lower-cased, whitespace-normalized tokens.
type SkillSet map[string]struct{}

// NewSkillSet builds a set from already-normalized tokens.
func NewSkillSet(tokens []string) SkillSet {
	s := make(SkillSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s SkillSet) Has(t string) bool {
	_, ok := s[t]
	return ok
}

// Depth selects how much of the engine Evaluate runs.
type Depth string

const (
	DepthQuick         Depth = "quick"
	DepthStandard      Depth = "standard"
	DepthDeep          Depth = "deep"
	DepthComprehensive Depth = "comprehensive"
)

// ParseDepth accepts the known depth names; "comprehensive" is an alias of deep.
func ParseDepth(s string) (Depth, error) {
	switch Depth(s) {
	case DepthQuick, DepthStandard, DepthDeep:
		return Depth(s), nil
	case DepthComprehensive:
		return DepthDeep, nil
	case "":
		return DepthStandard, nil
	}
	return "", ErrInvalidArgument
}

// Tier is a discrete verdict bucket.
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"

	TierExcellent Tier = "Excellent"
	TierStrong    Tier = "Strong"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierPoor      Tier = "Poor"
)

// BackendInfo describes a similarity backend's capability.
type BackendInfo struct {
	Name      string  `json:"name"`
	Available bool    `json:"available"`
	Weight    float64 `json:"weight"`
}

// FuzzyMatch records a requirement token matched by near-duplicate equivalence.
type FuzzyMatch struct {
	Term        string  `json:"term"`
	MatchedWith string  `json:"matched_with"`
	Ratio       float64 `json:"ratio"`
}

// MatchResult is the raw output of the matchers. Built once per analysis.
type MatchResult struct {
	HardScore     float64                 `json:"hard_score"`
	MissingTerms  []string                `json:"missing_terms"`
	FuzzyMatches  []FuzzyMatch            `json:"fuzzy_matches,omitempty"`
	SemanticScore float64                 `json:"semantic_score"`
	BackendScores map[string]float64      `json:"backend_scores,omitempty"`
	SectionScores map[SectionName]float64 `json:"section_scores,omitempty"`
	SkillScore    *float64                `json:"skill_score,omitempty"`
}

// Verdict is derived deterministically from match scores.
type Verdict struct {
	CombinedScore     float64 `json:"combined_score"`
	Tier              Tier    `json:"tier"`
	Explanation       string  `json:"explanation"`
	Recommendation    string  `json:"recommendation"`
	KeywordGapSummary string  `json:"keyword_gap_summary"`
	Policy            string  `json:"policy"`
	// InsufficientInput marks a zero score with no missing terms, which means
	// nothing could be compared rather than a poor match.
	InsufficientInput bool `json:"insufficient_input"`
}

// Report is the full output of one evaluation.
type Report struct {
	Depth               Depth         `json:"depth"`
	Match               MatchResult   `json:"match"`
	Verdict             Verdict       `json:"verdict"`
	SemanticExplanation string        `json:"semantic_explanation,omitempty"`
	Backends            []BackendInfo `json:"backends,omitempty"`
}

// Ports

// Embedder returns embedding vectors for texts.
type Embedder interface {
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// SimilarityBackend is one interchangeable similarity engine.
type SimilarityBackend interface {
	Name() string
	// Available is a cheap, cached capability check.
	Available(ctx Context) bool
	// Similarity returns a score in [0,1].
	Similarity(ctx Context, a, b string) (float64, error)
}

// BackendScore is one backend's contribution to a detailed similarity query.
type BackendScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// SimilarityDetail is the blended result of querying every available backend.
type SimilarityDetail struct {
	// Score is the weighted mean in [0,1], re-normalized over backends that answered.
	Score float64
	// Backends lists the answering backends in precedence order.
	Backends []BackendScore
}

// SimilarityChain selects among similarity backends. It never returns an
// error: a failing backend is skipped and total failure scores 0.
type SimilarityChain interface {
	// Score returns the first successful backend's score and that backend's name.
	Score(ctx Context, a, b string) (float64, string)
	Detailed(ctx Context, a, b string) SimilarityDetail
	Backends(ctx Context) []BackendInfo
}

// ClampPercent clamps v to [0,100]; NaN becomes 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClampUnit clamps v to [0,1]; NaN becomes 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Context aliases context.Context so ports read the same across adapters.
type Context = context.Context
