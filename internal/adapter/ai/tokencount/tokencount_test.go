package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()

	counter := NewCounter()

	tests := []struct {
		name     string
		text     string
		model    string
		minCount int
		maxCount int
	}{
		{
			name:     "simple text with openai embedding model",
			text:     "Hello, world!",
			model:    "text-embedding-3-small",
			minCount: 3,
			maxCount: 5,
		},
		{
			name:     "longer text",
			text:     "The quick brown fox jumps over the lazy dog.",
			model:    "text-embedding-ada-002",
			minCount: 8,
			maxCount: 12,
		},
		{
			name:     "gemini model approximated",
			text:     "Hello, world!",
			model:    "models/text-embedding-004",
			minCount: 3,
			maxCount: 5,
		},
		{
			name:     "empty text",
			text:     "",
			model:    "text-embedding-3-small",
			minCount: 0,
			maxCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			count, err := counter.CountTokens(tt.text, tt.model)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, tt.minCount)
			assert.LessOrEqual(t, count, tt.maxCount)
		})
	}
}

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"text-embedding-3-small", "text-embedding-3-small"},
		{"text-embedding-3-large", "text-embedding-3-small"},
		{"Text-Embedding-Ada-002", "text-embedding-ada-002"},
		{"models/text-embedding-004", "gpt-4"},
		{"unknown", "gpt-4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeModelName(tt.input))
		})
	}
}

func TestEncodingCache(t *testing.T) {
	counter := NewCounter()

	_, err := counter.CountTokens("test", "text-embedding-3-small")
	require.NoError(t, err)
	_, err = counter.CountTokens("test", "text-embedding-3-large")
	require.NoError(t, err)

	counter.mu.RLock()
	defer counter.mu.RUnlock()
	assert.Len(t, counter.encodingCache, 1)
}

func TestTruncate(t *testing.T) {
	counter := NewCounter()
	long := strings.Repeat("kubernetes terraform golang ", 200)

	out, cut, err := counter.Truncate(long, "text-embedding-3-small", 16)
	require.NoError(t, err)
	assert.True(t, cut)
	assert.True(t, strings.HasPrefix(long, out))

	n, err := counter.CountTokens(out, "text-embedding-3-small")
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 16)
}

func TestTruncate_NoOp(t *testing.T) {
	counter := NewCounter()

	out, cut, err := counter.Truncate("short text", "text-embedding-3-small", 100)
	require.NoError(t, err)
	assert.False(t, cut)
	assert.Equal(t, "short text", out)

	out, cut, err = counter.Truncate("anything", "text-embedding-3-small", 0)
	require.NoError(t, err)
	assert.False(t, cut)
	assert.Equal(t, "anything", out)
}

func TestDefaultHelpers(t *testing.T) {
	n, err := CountTokensDefault("Hello", "text-embedding-3-small")
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	out, _, err := TruncateDefault("Hello", "text-embedding-3-small", 10)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}
