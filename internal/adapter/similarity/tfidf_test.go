package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func TestTFIDF_IdenticalDocuments(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	text := "Senior Go engineer with Kubernetes, PostgreSQL and gRPC experience."
	got, err := tf.Similarity(context.Background(), text, text)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestTFIDF_Symmetric(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	a := "python developer building data pipelines with airflow and spark"
	b := "we need a data engineer: spark, kafka, python, dbt"
	ab, err := tf.Similarity(context.Background(), a, b)
	require.NoError(t, err)
	ba, err := tf.Similarity(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.Greater(t, ab, 0.0)
	assert.Less(t, ab, 1.0)
}

func TestTFIDF_DisjointDocuments(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	got, err := tf.Similarity(context.Background(), "haskell ocaml", "photoshop illustrator")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestTFIDF_EmptyVocabulary(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	for _, pair := range [][2]string{{"", ""}, {"the and of", "a an"}, {"x y", "z"}} {
		_, err := tf.Similarity(context.Background(), pair[0], pair[1])
		require.ErrorIs(t, err, domain.ErrEmptyVocabulary)
	}
}

func TestTFIDF_OneSideEmpty(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	got, err := tf.Similarity(context.Background(), "golang kubernetes", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestTFIDF_Bigrams(t *testing.T) {
	uni := NewTFIDF(TFIDFOptions{MinN: 1, MaxN: 1, StopWords: EnglishStopWords()})
	bi := NewTFIDF(TFIDFOptions{MinN: 1, MaxN: 2, StopWords: EnglishStopWords()})
	counts := bi.termCounts("Machine learning engineer")
	assert.Equal(t, 1, counts["machine learning"])
	assert.Equal(t, 1, counts["learning engineer"])
	assert.NotContains(t, uni.termCounts("Machine learning engineer"), "machine learning")

	// word order only matters once bigrams are counted
	a, b := "learning machine", "machine learning"
	su, err := uni.Similarity(context.Background(), a, b)
	require.NoError(t, err)
	sb, err := bi.Similarity(context.Background(), a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, su, 1e-9)
	assert.Less(t, sb, su)
}

func TestTFIDF_MaxFeatures(t *testing.T) {
	tf := NewTFIDF(TFIDFOptions{MinN: 1, MaxN: 1, MaxFeatures: 2})
	vocab := tf.vocabulary([2]map[string]int{
		tf.termCounts("go go go rust"),
		tf.termCounts("zig zig python"),
	})
	assert.Equal(t, []string{"go", "zig"}, vocab)
}

func TestTFIDF_DropsStopWordsAndShortTokens(t *testing.T) {
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords("golang")))
	counts := tf.termCounts("The golang and C engineer")
	assert.Equal(t, map[string]int{"engineer": 1}, counts)
}
