package verdict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Band maps every score at or above Min to Tier.
type Band struct {
	Min  float64
	Tier domain.Tier
}

// Scale is an ordered set of bands. Lower bounds are inclusive: a score
// exactly on a threshold lands in the upper tier.
type Scale struct {
	Name     string
	Bands    []Band
	Fallback domain.Tier
}

var (
	// ThreeTier is the default High/Medium/Low scale.
	ThreeTier = NewScale("three_tier", domain.TierLow,
		Band{Min: 80, Tier: domain.TierHigh},
		Band{Min: 60, Tier: domain.TierMedium},
	)
	// FiveTier is the finer scale used for comprehensive reports.
	FiveTier = NewScale("five_tier", domain.TierPoor,
		Band{Min: 85, Tier: domain.TierExcellent},
		Band{Min: 70, Tier: domain.TierStrong},
		Band{Min: 55, Tier: domain.TierGood},
		Band{Min: 40, Tier: domain.TierFair},
	)
)

// NewScale sorts bands highest threshold first.
func NewScale(name string, fallback domain.Tier, bands ...Band) Scale {
	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	return Scale{Name: name, Bands: sorted, Fallback: fallback}
}

// ScaleByName resolves "three_tier" or "five_tier"; "" selects ThreeTier.
func ScaleByName(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThreeTier.Name, "three":
		return ThreeTier, nil
	case FiveTier.Name, "five":
		return FiveTier, nil
	}
	return Scale{}, fmt.Errorf("%w: unknown tier scale %q", domain.ErrInvalidArgument, name)
}

// Classify returns the tier for score.
func (s Scale) Classify(score float64) domain.Tier {
	for _, b := range s.Bands {
		if score >= b.Min {
			return b.Tier
		}
	}
	return s.Fallback
}

// Lowest returns the bottom tier.
func (s Scale) Lowest() domain.Tier { return s.Fallback }

type template struct {
	explanation    string // takes the combined score
	recommendation string
}

var templates = map[domain.Tier]template{
	domain.TierHigh: {
		explanation:    "Strong match (%.1f%%): the résumé covers most of the stated requirements in both wording and substance.",
		recommendation: "Proceed to interview. Confirm depth on the most critical requirements.",
	},
	domain.TierMedium: {
		explanation:    "Partial match (%.1f%%): core requirements are present but several keywords or areas are weak or missing.",
		recommendation: "Consider for screening. Tailor the résumé to the missing keywords and quantify relevant experience.",
	},
	domain.TierLow: {
		explanation:    "Weak match (%.1f%%): the résumé shows little overlap with the job description.",
		recommendation: "Not a fit as written. Address the keyword gaps or target roles closer to the current experience.",
	},
	domain.TierExcellent: {
		explanation:    "Excellent match (%.1f%%): nearly every requirement is evidenced.",
		recommendation: "Fast-track to interview.",
	},
	domain.TierStrong: {
		explanation:    "Strong match (%.1f%%): most requirements are evidenced with minor gaps.",
		recommendation: "Proceed to interview and probe the listed gaps.",
	},
	domain.TierGood: {
		explanation:    "Good match (%.1f%%): the main requirements are covered but some areas are thin.",
		recommendation: "Shortlist. Strengthen the résumé around the weaker sections.",
	},
	domain.TierFair: {
		explanation:    "Fair match (%.1f%%): some relevant experience, with significant gaps.",
		recommendation: "Hold for comparison. Add missing skills and concrete project evidence.",
	},
	domain.TierPoor: {
		explanation:    "Poor match (%.1f%%): little of the job description is reflected in the résumé.",
		recommendation: "Not recommended for this role without substantial changes.",
	},
}

var unknownTemplate = template{
	explanation:    "Match score %.1f%%.",
	recommendation: "Review manually.",
}

func templateFor(t domain.Tier) template {
	if tmpl, ok := templates[t]; ok {
		return tmpl
	}
	return unknownTemplate
}
