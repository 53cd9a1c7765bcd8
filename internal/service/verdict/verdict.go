// Package verdict combines match scores into a final percentage, a discrete
// tier and human-readable guidance.
//
// Aggregation is a pure function of its input: the same scores always give
// the same Verdict.
package verdict

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// DefaultMaxGapTerms caps the missing terms listed in the keyword gap summary.
const DefaultMaxGapTerms = 15

// Policy is a named weighting of the sub-scores. The project carries several
// weightings on purpose; none of them is canonical.
type Policy struct {
	Name     string
	Hard     float64
	Semantic float64
	Skill    float64
}

var (
	// PolicyBalanced averages hard and semantic scores.
	PolicyBalanced = Policy{Name: "balanced", Hard: 0.5, Semantic: 0.5}
	// PolicySkillWeighted adds the skill sub-score.
	PolicySkillWeighted = Policy{Name: "skill_weighted", Hard: 0.3, Semantic: 0.5, Skill: 0.2}
	// PolicySemanticLeaning favours meaning over wording.
	PolicySemanticLeaning = Policy{Name: "semantic_leaning", Hard: 0.4, Semantic: 0.6}
)

// PolicyByName resolves a policy name; "" selects PolicyBalanced.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyBalanced.Name:
		return PolicyBalanced, nil
	case PolicySkillWeighted.Name:
		return PolicySkillWeighted, nil
	case PolicySemanticLeaning.Name:
		return PolicySemanticLeaning, nil
	}
	return Policy{}, fmt.Errorf("%w: unknown aggregation policy %q", domain.ErrInvalidArgument, name)
}

// Input is what the aggregator consumes.
type Input struct {
	HardScore     float64  `validate:"gte=0,lte=100"`
	SemanticScore float64  `validate:"gte=0,lte=100"`
	SkillScore    *float64 `validate:"omitnil,gte=0,lte=100"`
	MissingTerms  []string
	// Policy is optional. The zero value picks PolicySkillWeighted when a
	// skill score is present and PolicyBalanced otherwise.
	Policy Policy
}

// Aggregator is immutable and safe for concurrent use.
type Aggregator struct {
	scale       Scale
	maxGapTerms int
	vld         *validator.Validate
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxGapTerms sets how many missing terms the gap summary lists.
func WithMaxGapTerms(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxGapTerms = n
		}
	}
}

// New builds an Aggregator over scale.
func New(scale Scale, opts ...Option) *Aggregator {
	a := &Aggregator{scale: scale, maxGapTerms: DefaultMaxGapTerms, vld: validator.New()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Scale returns the tier scale in use.
func (a *Aggregator) Scale() Scale { return a.scale }

// Aggregate builds the Verdict. Scores outside [0,100] or NaN are a caller
// bug and return ErrInvalidArgument.
func (a *Aggregator) Aggregate(in Input) (domain.Verdict, error) {
	if err := a.vld.Struct(in); err != nil {
		return domain.Verdict{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	policy := in.Policy
	if policy.Name == "" {
		policy = PolicyBalanced
		if in.SkillScore != nil {
			policy = PolicySkillWeighted
		}
	}

	combined := Combine(policy, in.HardScore, in.SemanticScore, in.SkillScore)
	tier := a.scale.Classify(combined)
	tmpl := templateFor(tier)
	return domain.Verdict{
		CombinedScore:     combined,
		Tier:              tier,
		Explanation:       fmt.Sprintf(tmpl.explanation, combined),
		Recommendation:    tmpl.recommendation,
		KeywordGapSummary: gapSummary(in.MissingTerms, a.maxGapTerms),
		Policy:            policy.Name,
		InsufficientInput: combined == 0 && len(in.MissingTerms) == 0,
	}, nil
}

// Combine applies policy. When the policy weights a skill score that is
// absent, the remaining weights are re-normalized.
func Combine(p Policy, hard, semantic float64, skill *float64) float64 {
	sum := p.Hard*hard + p.Semantic*semantic
	weights := p.Hard + p.Semantic
	if skill != nil && p.Skill > 0 {
		sum += p.Skill * *skill
		weights += p.Skill
	}
	if weights <= 0 {
		return 0
	}
	return domain.ClampPercent(sum / weights)
}

func gapSummary(missing []string, limit int) string {
	if len(missing) == 0 {
		return ""
	}
	shown := missing
	if len(shown) > limit {
		shown = shown[:limit]
	}
	s := "Missing keywords: " + strings.Join(shown, ", ")
	if extra := len(missing) - len(shown); extra > 0 {
		s += fmt.Sprintf(" (+%d more)", extra)
	}
	return s
}
