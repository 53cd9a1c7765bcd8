package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHardMatch_Scenario(t *testing.T) {
	score, missing := HardMatch("python java sql", "python java sql docker")
	assert.InDelta(t, 75.0, score, 1e-9)
	assert.Equal(t, []string{"docker"}, missing)
}

func TestHardMatch_EmptyInputs(t *testing.T) {
	texts := []string{"", "python", "Senior Go engineer, Kubernetes and SQL.", "   "}
	for _, a := range texts {
		score, missing := HardMatch(a, "")
		assert.Equal(t, 0.0, score)
		assert.NotNil(t, missing)
		assert.Empty(t, missing)

		score, missing = HardMatch("", a)
		assert.Equal(t, 0.0, score)
		assert.Empty(t, missing)
	}
}

func TestHardMatch_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"go", "go go go"},
		{"a b c d e f", "a"},
		{"rust", "python java"},
		{"Python, JAVA; sql.", "python java sql"},
		{"ünïcödé text", "ÜNÏCÖDÉ"},
	}
	for _, p := range pairs {
		score, _ := HardMatch(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestHardMatch_NonCommutative(t *testing.T) {
	resume, jd := "python java sql", "python java sql docker"
	s1, m1 := HardMatch(resume, jd)
	s2, m2 := HardMatch(jd, resume)
	assert.NotEqual(t, s1, s2)
	assert.Equal(t, []string{"docker"}, m1)
	assert.Empty(t, m2)
}

func TestHardMatch_MissingFollowsRequirementOrder(t *testing.T) {
	_, missing := HardMatch("go", "terraform go ansible aws terraform")
	assert.Equal(t, []string{"terraform", "ansible", "aws"}, missing)
}

func TestHardMatch_PunctuationAndCase(t *testing.T) {
	score, missing := HardMatch("Python, Java; (SQL)", "python java sql")
	assert.Equal(t, 100.0, score)
	assert.Empty(t, missing)
}

func TestEnhanced_FuzzyMatch(t *testing.T) {
	m := New(DefaultFuzzyThreshold)
	res := m.Enhanced("kubernetes postgresql", "kubernetes postgres docker")

	assert.InDelta(t, 40.0, res.Score, 1e-9)
	assert.InDelta(t, 100.0/3, res.ExactScore, 1e-9)
	assert.Equal(t, []string{"docker"}, res.Missing)
	require.Len(t, res.FuzzyMatches, 1)
	assert.Equal(t, "postgres", res.FuzzyMatches[0].Term)
	assert.Equal(t, "postgresql", res.FuzzyMatches[0].MatchedWith)
	assert.InDelta(t, 0.8, res.FuzzyMatches[0].Ratio, 1e-6)
}

func TestEnhanced_AllExact(t *testing.T) {
	res := New(0).Enhanced("python java sql", "python java sql")
	assert.InDelta(t, 100.0, res.Score, 1e-9)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.FuzzyMatches)
}

func TestEnhanced_ThresholdRespected(t *testing.T) {
	res := New(0.95).Enhanced("postgresql", "postgres")
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, []string{"postgres"}, res.Missing)
}

func TestEnhanced_EmptyInputs(t *testing.T) {
	m := New(0)
	for _, res := range []Result{m.Enhanced("", "go"), m.Enhanced("go", ""), m.Enhanced("", "")} {
		assert.Equal(t, 0.0, res.Score)
		assert.NotNil(t, res.Missing)
		assert.Empty(t, res.Missing)
	}
}

func TestEnhanced_Deterministic(t *testing.T) {
	m := New(0)
	resume := "javascript typescript graphql microservices kafka redis"
	jd := "javascrip typescrpt graphq micro-services kafka redis mongodb"
	first := m.Enhanced(resume, jd)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.Enhanced(resume, jd))
	}
}

func TestNew_DefaultsThreshold(t *testing.T) {
	assert.Equal(t, DefaultFuzzyThreshold, New(0).Threshold())
	assert.Equal(t, DefaultFuzzyThreshold, New(1.5).Threshold())
	assert.Equal(t, 0.9, New(0.9).Threshold())
}

func TestSkillScore(t *testing.T) {
	m := New(0)
	_, ok := m.SkillScore("go sql", "")
	assert.False(t, ok)

	score, ok := m.SkillScore("", "go sql")
	assert.True(t, ok)
	assert.Equal(t, 0.0, score)

	score, ok = m.SkillScore("Go, SQL, Docker", "go sql")
	assert.True(t, ok)
	assert.InDelta(t, 100.0, score, 1e-9)
}
