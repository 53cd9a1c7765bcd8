package similarity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	name      string
	available bool
	score     float64
	err       error
	panics    bool
	calls     atomic.Int32
}

func (f *fakeBackend) Name() string                  { return f.name }
func (f *fakeBackend) Available(domain.Context) bool { return f.available }
func (f *fakeBackend) Similarity(domain.Context, string, string) (float64, error) {
	f.calls.Add(1)
	if f.panics {
		panic("model crashed")
	}
	return f.score, f.err
}

func TestChain_Score_FirstAvailableWins(t *testing.T) {
	emb := &fakeBackend{name: NameEmbedding, available: true, score: 0.9}
	tf := &fakeBackend{name: NameTFIDF, available: true, score: 0.2}
	c := NewChain(0, Entry{Backend: emb, Weight: 0.5}, Entry{Backend: tf, Weight: 0.1})

	score, name := c.Score(context.Background(), "a", "b")
	assert.Equal(t, 0.9, score)
	assert.Equal(t, NameEmbedding, name)
	assert.Zero(t, tf.calls.Load())
}

func TestChain_Score_FallsThroughUnavailableErrorAndPanic(t *testing.T) {
	emb := &fakeBackend{name: NameEmbedding, available: false, score: 0.9}
	pipe := &fakeBackend{name: NamePipeline, available: true, err: errors.New("boom")}
	crash := &fakeBackend{name: "crash", available: true, panics: true}
	tf := &fakeBackend{name: NameTFIDF, available: true, score: 0.4}
	c := NewChain(0, Entry{Backend: emb}, Entry{Backend: pipe}, Entry{Backend: crash}, Entry{Backend: tf})

	score, name := c.Score(context.Background(), "a", "b")
	assert.Equal(t, 0.4, score)
	assert.Equal(t, NameTFIDF, name)
	assert.Zero(t, emb.calls.Load())
	assert.Equal(t, int32(1), pipe.calls.Load())
}

func TestChain_Score_AllFail(t *testing.T) {
	c := NewChain(0,
		Entry{Backend: &fakeBackend{name: "x", available: true, err: errors.New("nope")}},
		Entry{Backend: NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))},
	)
	score, name := c.Score(context.Background(), "", "")
	assert.Equal(t, 0.0, score)
	assert.Empty(t, name)
}

func TestChain_Score_ClampsOutOfRange(t *testing.T) {
	c := NewChain(0, Entry{Backend: &fakeBackend{name: "x", available: true, score: 1.7}})
	score, _ := c.Score(context.Background(), "a", "b")
	assert.Equal(t, 1.0, score)
}

func TestChain_Score_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	be := &fakeBackend{name: "x", available: true, score: 0.5}
	score, name := NewChain(0, Entry{Backend: be}).Score(ctx, "a", "b")
	assert.Equal(t, 0.0, score)
	assert.Empty(t, name)
	assert.Zero(t, be.calls.Load())
}

func TestChain_Detailed_RenormalizesOverSuccessful(t *testing.T) {
	emb := &fakeBackend{name: NameEmbedding, available: true, score: 0.8}
	pipe := &fakeBackend{name: NamePipeline, available: true, err: errors.New("down")}
	tf := &fakeBackend{name: NameTFIDF, available: true, score: 0.3}
	c := NewChain(0,
		Entry{Backend: emb, Weight: 0.5},
		Entry{Backend: pipe, Weight: 0.3},
		Entry{Backend: tf, Weight: 0.1},
	)

	d := c.Detailed(context.Background(), "a", "b")
	require.Len(t, d.Backends, 2)
	assert.Equal(t, NameEmbedding, d.Backends[0].Name)
	assert.Equal(t, NameTFIDF, d.Backends[1].Name)
	assert.InDelta(t, (0.8*0.5+0.3*0.1)/0.6, d.Score, 1e-12)
	assert.Equal(t, int32(1), pipe.calls.Load())
}

func TestChain_Detailed_ZeroWeightsUsePlainMean(t *testing.T) {
	c := NewChain(0,
		Entry{Backend: &fakeBackend{name: "a", available: true, score: 0.2}},
		Entry{Backend: &fakeBackend{name: "b", available: true, score: 0.6}},
	)
	assert.InDelta(t, 0.4, c.Detailed(context.Background(), "x", "y").Score, 1e-12)
}

func TestChain_Detailed_NoBackendAnswers(t *testing.T) {
	c := NewChain(0,
		Entry{Backend: &fakeBackend{name: "a", available: false}, Weight: 1},
		Entry{Backend: &fakeBackend{name: "b", available: true, panics: true}, Weight: 1},
	)
	d := c.Detailed(context.Background(), "x", "y")
	assert.Equal(t, 0.0, d.Score)
	assert.Empty(t, d.Backends)
}

func TestChain_Backends(t *testing.T) {
	c := NewChain(0,
		Entry{Backend: &fakeBackend{name: NameEmbedding, available: false}, Weight: 0.5},
		Entry{Backend: nil, Weight: 0.3},
		Entry{Backend: NewTFIDF(DocumentTFIDFOptions(nil)), Weight: 0.1},
	)
	assert.Equal(t, []domain.BackendInfo{
		{Name: NameEmbedding, Available: false, Weight: 0.5},
		{Name: NameTFIDF, Available: true, Weight: 0.1},
	}, c.Backends(context.Background()))
}

// flipping simulates a dependency that disappears between calls.
type flipping struct {
	fakeBackend
	up atomic.Bool
}

func (f *flipping) Available(domain.Context) bool { return f.up.Load() }

func TestChain_BackendFlipsUnavailable(t *testing.T) {
	emb := &flipping{fakeBackend: fakeBackend{name: NameEmbedding, score: 0.9}}
	emb.up.Store(true)
	tf := NewTFIDF(DocumentTFIDFOptions(EnglishStopWords()))
	c := NewChain(0, Entry{Backend: emb, Weight: 0.5}, Entry{Backend: tf, Weight: 0.1})

	_, name := c.Score(context.Background(), "golang", "golang")
	assert.Equal(t, NameEmbedding, name)

	emb.up.Store(false)
	score, name := c.Score(context.Background(), "golang", "golang")
	assert.Equal(t, NameTFIDF, name)
	assert.InDelta(t, 1.0, score, 1e-9)
}
