package similarity

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

// Backend names, in precedence order.
const (
	NameEmbedding = "embedding"
	NamePipeline  = "pipeline"
	NameTFIDF     = "tfidf"
)

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// TFIDFOptions tunes the statistical backend.
type TFIDFOptions struct {
	// MinN and MaxN bound the word n-gram range; zero values select 1..1.
	MinN, MaxN int
	// MaxFeatures caps the vocabulary, most frequent terms first; <= 0 is unbounded.
	MaxFeatures int
	StopWords   StopWords
}

// DocumentTFIDFOptions is used for whole-document comparison.
func DocumentTFIDFOptions(sw StopWords) TFIDFOptions {
	return TFIDFOptions{MinN: 1, MaxN: 2, MaxFeatures: 1000, StopWords: sw}
}

// SectionTFIDFOptions is the narrower configuration used per section.
func SectionTFIDFOptions(sw StopWords) TFIDFOptions {
	return TFIDFOptions{MinN: 1, MaxN: 1, MaxFeatures: 500, StopWords: sw}
}

// TFIDF scores two texts by the cosine of their TF-IDF vectors, fitted on
// the two-document corpus alone. It has no external dependency and is
// always available.
type TFIDF struct {
	opts TFIDFOptions
}

// NewTFIDF builds the statistical backend.
func NewTFIDF(opts TFIDFOptions) *TFIDF {
	if opts.MinN <= 0 {
		opts.MinN = 1
	}
	if opts.MaxN < opts.MinN {
		opts.MaxN = opts.MinN
	}
	return &TFIDF{opts: opts}
}

// Name implements domain.SimilarityBackend.
func (t *TFIDF) Name() string { return NameTFIDF }

// Available implements domain.SimilarityBackend.
func (t *TFIDF) Available(domain.Context) bool { return true }

// Similarity returns the clamped cosine similarity. An empty vocabulary
// (both texts empty or only stop words) yields ErrEmptyVocabulary.
func (t *TFIDF) Similarity(_ domain.Context, a, b string) (float64, error) {
	docs := [2]map[string]int{t.termCounts(a), t.termCounts(b)}
	vocab := t.vocabulary(docs)
	if len(vocab) == 0 {
		return 0, fmt.Errorf("op=similarity.TFIDF: %w", domain.ErrEmptyVocabulary)
	}

	var va, vb []float64
	for _, term := range vocab {
		df := 0
		for _, d := range docs {
			if d[term] > 0 {
				df++
			}
		}
		// smooth idf: ln((1+n)/(1+df)) + 1 with n = 2
		idf := math.Log(3/float64(1+df)) + 1
		va = append(va, float64(docs[0][term])*idf)
		vb = append(vb, float64(docs[1][term])*idf)
	}
	return domain.ClampUnit(cosine64(va, vb)), nil
}

func (t *TFIDF) termCounts(text string) map[string]int {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	kept := words[:0]
	for _, w := range words {
		if !t.opts.StopWords.Has(w) {
			kept = append(kept, w)
		}
	}
	counts := make(map[string]int)
	for n := t.opts.MinN; n <= t.opts.MaxN; n++ {
		for i := 0; i+n <= len(kept); i++ {
			counts[strings.Join(kept[i:i+n], " ")]++
		}
	}
	return counts
}

// vocabulary returns the kept terms: highest corpus frequency first, ties
// alphabetical, capped at MaxFeatures.
func (t *TFIDF) vocabulary(docs [2]map[string]int) []string {
	total := make(map[string]int)
	for _, d := range docs {
		for term, c := range d {
			total[term] += c
		}
	}
	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if t.opts.MaxFeatures > 0 && len(terms) > t.opts.MaxFeatures {
		terms = terms[:t.opts.MaxFeatures]
	}
	return terms
}

func cosine64(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cosine32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
