package similarity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/pkg/textx"
)

const (
	// softMatchThreshold is the Jaro-Winkler score at which two distinct
	// stems are folded onto one dimension.
	softMatchThreshold = 0.92
	minStemLength      = 3
)

// analyzer is the pipeline's loaded state: stop words and stemming rules.
type analyzer struct {
	stopWords StopWords
}

func (an *analyzer) stems(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.Fields(textx.Normalize(text)) {
		w = strings.Trim(w, ".,!?;:()-")
		if len([]rune(w)) < 2 || an.stopWords.Has(w) {
			continue
		}
		if len(w) >= minStemLength {
			w = porter2.Stem(w)
		}
		counts[w]++
	}
	return counts
}

// Pipeline is the lightweight NLP backend: normalize, drop stop words, stem
// with Porter2, fold near-identical stems, then compare stem frequency
// vectors by cosine.
type Pipeline struct {
	handle   *Lazy[*analyzer]
	maxChars int
}

// NewPipeline builds the backend. The analyzer is created on first use
// within initTimeout. maxChars truncates each input; <= 0 disables it.
func NewPipeline(sw StopWords, maxChars int, initTimeout time.Duration) *Pipeline {
	return &Pipeline{
		handle: NewLazy(func(context.Context) (*analyzer, error) {
			if len(sw) == 0 {
				sw = EnglishStopWords()
			}
			return &analyzer{stopWords: sw}, nil
		}, initTimeout),
		maxChars: maxChars,
	}
}

// Name implements domain.SimilarityBackend.
func (p *Pipeline) Name() string { return NamePipeline }

// Available implements domain.SimilarityBackend.
func (p *Pipeline) Available(ctx domain.Context) bool {
	_, err := p.handle.Get(ctx)
	return err == nil
}

// Similarity implements domain.SimilarityBackend.
func (p *Pipeline) Similarity(ctx domain.Context, a, b string) (float64, error) {
	an, err := p.handle.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("op=similarity.Pipeline: %w: %v", domain.ErrBackendUnavailable, err)
	}
	ca := an.stems(textx.TruncateRunes(a, p.maxChars))
	cb := an.stems(textx.TruncateRunes(b, p.maxChars))
	if len(ca) == 0 || len(cb) == 0 {
		return 0, fmt.Errorf("op=similarity.Pipeline: %w", domain.ErrEmptyVocabulary)
	}

	canon := foldStems(ca, cb)
	fa, fb := make(map[string]float64), make(map[string]float64)
	for s, c := range ca {
		fa[canon[s]] += float64(c)
	}
	for s, c := range cb {
		fb[canon[s]] += float64(c)
	}
	dims := make([]string, 0, len(fa)+len(fb))
	for s := range fa {
		dims = append(dims, s)
	}
	for s := range fb {
		if _, ok := fa[s]; !ok {
			dims = append(dims, s)
		}
	}
	sort.Strings(dims)
	va, vb := make([]float64, len(dims)), make([]float64, len(dims))
	for i, s := range dims {
		va[i], vb[i] = fa[s], fb[s]
	}
	return domain.ClampUnit(cosine64(va, vb)), nil
}

// foldStems maps every stem of the union onto the first (alphabetically)
// earlier stem it closely resembles. It depends only on the union, so the
// result is the same whichever text comes first.
func foldStems(a, b map[string]int) map[string]string {
	union := make([]string, 0, len(a)+len(b))
	for s := range a {
		union = append(union, s)
	}
	for s := range b {
		if _, ok := a[s]; !ok {
			union = append(union, s)
		}
	}
	sort.Strings(union)

	canon := make(map[string]string, len(union))
	var heads []string
	for _, s := range union {
		target := s
		for _, h := range heads {
			score, err := edlib.StringsSimilarity(s, h, edlib.JaroWinkler)
			if err == nil && float64(score) >= softMatchThreshold {
				target = h
				break
			}
		}
		if target == s {
			heads = append(heads, s)
		}
		canon[s] = target
	}
	return canon
}
