package textx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"collapses and trims", "  Go   Developer\n\nRemote  ", "go developer remote"},
		{"keeps sentence punctuation", "Hello, World! (Go) - ok; yes: no?", "hello, world! (go) - ok; yes: no?"},
		{"replaces symbols", "C++ & C# @ home/office", "c c home office"},
		{"keeps underscores and digits", "snake_case v2", "snake_case v2"},
		{"composes accents", "Résumé", "résumé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "Senior *Backend* Engineer — Go/Kubernetes, 5+ yrs."
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestTokens(t *testing.T) {
	got := Tokens("Python, Java; (SQL) python - docker.")
	assert.Equal(t, []string{"python", "java", "sql", "docker"}, got)
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens(" - ; "))
}

func TestTokens_KeepsInnerPunctuation(t *testing.T) {
	assert.Equal(t, []string{"node.js", "ci-cd"}, Tokens("Node.js CI-CD"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 0))
	long := strings.Repeat("ab", 10)
	assert.Len(t, TruncateRunes(long, 7), 7)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(" \n\t"))
	assert.False(t, IsBlank(" x "))
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"drops NUL and DEL", "he\x00llo\nwo\x7frld\t!", "hello\nworld\t!"},
		{"drops bell and C1 controls", "Go\x07 dev\u0085eloper", "Go developer"},
		{"keeps line structure", "Skills\r\nGo\n", "Skills\r\nGo"},
		{"trims", "  \x00 text \x1b ", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}
