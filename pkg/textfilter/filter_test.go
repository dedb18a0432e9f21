package textfilter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  look  ", "look"},
		{"tabs become spaces", "say\thello", "say hello"},
		{"strips control characters", "att\x1b[31mack", "att[31mack"},
		{"strips nulls", "look\x00north", "looknorth"},
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitize_CapsLength(t *testing.T) {
	long := strings.Repeat("a", MaxInputLength*2)
	assert.Len(t, Sanitize(long), MaxInputLength)
}

func TestSanitize_TruncatesAtRuneBoundary(t *testing.T) {
	long := Sanitize(strings.Repeat("é", MaxInputLength))
	assert.True(t, utf8.ValidString(long), "the cap must not split a multi-byte rune")
	assert.LessOrEqual(t, len(long), MaxInputLength)
}

func TestMatchesName(t *testing.T) {
	assert.True(t, MatchesName("giant_spider", "giant_spider", "giant spider"))
	assert.True(t, MatchesName("giant spider", "giant_spider", "giant spider"))
	assert.True(t, MatchesName("spider", "giant_spider", "giant spider"), "any word of the name matches")
	assert.True(t, MatchesName("  GIA ", "giant_spider", "giant spider"))
	assert.False(t, MatchesName("ant", "giant_spider", "giant spider"), "substrings do not match")
	assert.False(t, MatchesName("wolf", "giant_spider", "giant spider"))
	assert.False(t, MatchesName("", "giant_spider", "giant spider"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", DisplayName("ADA"))
	assert.Equal(t, "Ada", DisplayName("  ada "))
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("Ada"))
	assert.True(t, ValidName("Grimbleshanks"))
	assert.False(t, ValidName("Al"), "too short")
	assert.False(t, ValidName(strings.Repeat("a", 17)), "too long")
	assert.False(t, ValidName("Ada2"))
	assert.False(t, ValidName("Ada Lovelace"))
	assert.False(t, ValidName(""))
}
