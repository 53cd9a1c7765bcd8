package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/resume-matcher/internal/domain"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	texts  []string
	err    error
	short  bool
	vector []float32
}

func (f *fakeEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		if f.vector != nil {
			out[i] = f.vector
			continue
		}
		out[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewEmbedCache_UsesCache(t *testing.T) {
	base := &fakeEmbedder{}
	wrapped := NewEmbedCache(base, 8)
	ctx := context.Background()
	texts := []string{"hello", "world"}

	first, err := wrapped.Embed(ctx, texts)
	require.NoError(t, err)
	second, err := wrapped.Embed(ctx, texts)
	require.NoError(t, err)

	assert.Equal(t, 1, base.callCount())
	assert.Equal(t, first, second)
}

func TestNewEmbedCache_OnlyMissesGoUpstream(t *testing.T) {
	base := &fakeEmbedder{}
	wrapped := NewEmbedCache(base, 8)
	ctx := context.Background()

	_, err := wrapped.Embed(ctx, []string{"go"})
	require.NoError(t, err)
	out, err := wrapped.Embed(ctx, []string{"go", "rust"})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, []string{"go", "rust"}, base.texts)
	assert.Equal(t, float32(4), out[1][0])
}

func TestNewEmbedCache_Passthrough(t *testing.T) {
	base := &fakeEmbedder{}
	assert.Same(t, domain.Embedder(base), NewEmbedCache(base, 0))
	assert.Nil(t, NewEmbedCache(nil, 8))
}

func TestNewEmbedCache_FIFOEviction(t *testing.T) {
	base := &fakeEmbedder{}
	wrapped := NewEmbedCache(base, 2).(*embedCache)
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c"} {
		_, err := wrapped.Embed(ctx, []string{s})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, wrapped.len())

	// "a" was evicted first
	_, err := wrapped.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 4, base.callCount())
	_, err = wrapped.Embed(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, 4, base.callCount())
}

func TestNewEmbedCache_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := NewEmbedCache(&fakeEmbedder{err: boom}, 4).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, boom)

	_, err = NewEmbedCache(&fakeEmbedder{short: true}, 4).Embed(ctx, []string{"x", "y"})
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestNewEmbedCache_KeyIgnoresSurroundingSpace(t *testing.T) {
	assert.Equal(t, keyFor("golang"), keyFor("  golang\n"))
	assert.NotEqual(t, keyFor("golang"), keyFor("go lang"))
}
