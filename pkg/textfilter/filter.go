// Package textfilter normalizes raw player input before it reaches the
// command dispatcher, and provides display casing helpers for names.
package textfilter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxInputLength caps a single command line. Longer input is truncated
// rather than rejected.
const MaxInputLength = 512

var titleCaser = cases.Title(language.English)

// Sanitize trims whitespace, strips control and other non-printable
// characters, and caps the line length. It never returns an error: bad
// input degrades to an empty string, which the dispatcher ignores.
func Sanitize(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if len(out) > MaxInputLength {
		// Back off to a rune boundary so the cut never leaves a broken
		// UTF-8 sequence at the end.
		cut := MaxInputLength
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// MatchesName reports whether player input refers to an entity with the
// given id and display name. Input matches the id exactly, or the name
// (or any word of a multi-word name) by case-insensitive prefix, so
// "spider" finds a "giant spider".
func MatchesName(input, id, name string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return false
	}
	if strings.EqualFold(id, input) {
		return true
	}
	name = strings.ToLower(name)
	if strings.HasPrefix(name, input) {
		return true
	}
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, input) {
			return true
		}
	}
	return false
}

// DisplayName renders a stored lowercase name for presentation.
func DisplayName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// ValidName reports whether a character name is acceptable: 3-16 letters,
// nothing else.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 16 {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
