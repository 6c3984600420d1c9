// Package moderation masks configured words in chat content before it is
// persisted or broadcast. Matching is case-insensitive via an
// Aho-Corasick automaton built once at startup.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

// NewModerator builds the automaton from the word list. An empty list
// yields a pass-through moderator.
func NewModerator(words []string, maskChar rune) (*Moderator, error) {
	if len(words) == 0 {
		return &Moderator{maskChar: maskChar}, nil
	}

	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lowerRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, maskChar: maskChar}, nil
}

// Censor replaces every occurrence of a configured word with the mask
// character, preserving the length and the rest of the content.
func (m *Moderator) Censor(original string) string {
	if m.matcher == nil || original == "" {
		return original
	}

	origRunes := []rune(original)
	spans := m.matcher.MultiPatternSearch(lowerRunes(origRunes), false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(origRunes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			origRunes[i] = m.maskChar
		}
	}
	return string(origRunes)
}

func lowerRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = unicode.ToLower(r)
	}
	return out
}
