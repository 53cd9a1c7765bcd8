// Package lexical implements keyword-overlap ("hard") matching between a
// résumé and a job description.
package lexical

import (
	"sort"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

const (
	// DefaultFuzzyThreshold is the minimum Levenshtein ratio for near-duplicate tokens.
	DefaultFuzzyThreshold = 0.8

	exactWeight = 0.8
	fuzzyWeight = 0.2
)

// Result is the outcome of an enhanced match.
type Result struct {
	// Score blends the exact ratio (0.8) and the exact-or-fuzzy ratio (0.2), in [0,100].
	Score float64
	// ExactScore is the plain overlap percentage.
	ExactScore   float64
	Missing      []string
	FuzzyMatches []domain.FuzzyMatch
}

// HardMatch returns the percentage of job-description tokens present in the
// résumé and the missing ones in job-description order. Either text being
// empty yields (0, []).
func HardMatch(resume, jd string) (float64, []string) {
	jdTokens := textx.Tokens(jd)
	resumeTokens := textx.Tokens(resume)
	if len(jdTokens) == 0 || len(resumeTokens) == 0 {
		return 0, []string{}
	}
	have := domain.NewSkillSet(resumeTokens)
	missing := make([]string, 0, len(jdTokens))
	common := 0
	for _, t := range jdTokens {
		if have.Has(t) {
			common++
			continue
		}
		missing = append(missing, t)
	}
	return percent(common, len(jdTokens)), missing
}

// Matcher runs enhanced matching with near-duplicate detection.
type Matcher struct {
	threshold float64
}

// New builds a Matcher. A threshold outside (0,1] selects DefaultFuzzyThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the fuzzy ratio threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Enhanced matches exactly first, then compares every unmatched
// job-description token against the résumé tokens not consumed by an exact
// match. A best Levenshtein ratio at or above the threshold counts the token
// as matched. Candidates are scanned in sorted order and ties keep the first,
// so output is deterministic.
func (m *Matcher) Enhanced(resume, jd string) Result {
	jdTokens := textx.Tokens(jd)
	resumeTokens := textx.Tokens(resume)
	if len(jdTokens) == 0 || len(resumeTokens) == 0 {
		return Result{Missing: []string{}}
	}
	jdSet := domain.NewSkillSet(jdTokens)
	have := domain.NewSkillSet(resumeTokens)

	remaining := make([]string, 0, len(resumeTokens))
	for _, t := range resumeTokens {
		if !jdSet.Has(t) {
			remaining = append(remaining, t)
		}
	}
	sort.Strings(remaining)

	exact := 0
	missing := make([]string, 0)
	var fuzzy []domain.FuzzyMatch
	for _, t := range jdTokens {
		if have.Has(t) {
			exact++
			continue
		}
		if best, ratio, ok := m.bestFuzzy(t, remaining); ok {
			fuzzy = append(fuzzy, domain.FuzzyMatch{Term: t, MatchedWith: best, Ratio: ratio})
			continue
		}
		missing = append(missing, t)
	}

	n := len(jdTokens)
	exactRatio := float64(exact) / float64(n)
	anyRatio := float64(exact+len(fuzzy)) / float64(n)
	return Result{
		Score:        domain.ClampPercent(100 * (exactWeight*exactRatio + fuzzyWeight*anyRatio)),
		ExactScore:   percent(exact, n),
		Missing:      missing,
		FuzzyMatches: fuzzy,
	}
}

func (m *Matcher) bestFuzzy(term string, candidates []string) (string, float64, bool) {
	termLen := utf8.RuneCountInString(term)
	best, bestRatio := "", 0.0
	for _, c := range candidates {
		if !m.reachable(termLen, utf8.RuneCountInString(c)) {
			continue
		}
		r, err := edlib.StringsSimilarity(term, c, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if ratio := float64(r); ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if best == "" || bestRatio < m.threshold {
		return "", 0, false
	}
	return best, bestRatio, true
}

// reachable skips pairs whose length gap alone keeps the ratio under threshold.
func (m *Matcher) reachable(a, b int) bool {
	longer, gap := a, a-b
	if b > a {
		longer, gap = b, b-a
	}
	if longer == 0 {
		return false
	}
	return 1-float64(gap)/float64(longer) >= m.threshold
}

// SkillScore compares the résumé skills text with the job-description skills
// text. ok is false when the job description lists no skills, meaning no
// skill-specific score exists.
func (m *Matcher) SkillScore(resumeSkills, jdSkills string) (score float64, ok bool) {
	if len(textx.Tokens(jdSkills)) == 0 {
		return 0, false
	}
	return m.Enhanced(resumeSkills, jdSkills).Score, true
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return domain.ClampPercent(100 * float64(part) / float64(whole))
}
