// Package fuzzy ranks action identifiers and titles against a typed
// query, the way a shortcut settings search does.
//
// Every query rune must appear in the candidate in order. Matches score
// higher when they are consecutive, start a word ("quickOpen.show"
// matches "qos" at three boundaries) or start the candidate.
package fuzzy

import (
	"slices"
	"strings"
	"unicode"
)

// Scoring weights.
const (
	baseScore         = 100
	consecutiveBonus  = 20
	wordBoundaryBonus = 15
	prefixBonus       = 25
	exactPrefixBonus  = 50
	gapPenalty        = 2
	lengthThreshold   = 20
)

// Match is a candidate that matched a query.
type Match struct {
	// Index is the position of the candidate in the input slice.
	Index int
	Text  string
	Score int
	// Positions are the rune indices of the matched characters.
	Positions []int
}

// Find returns the candidates matching query, best first. Ties keep
// input order. An empty query matches every candidate with score zero.
// Matching ignores case.
func Find(query string, candidates []string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))

	matches := make([]Match, 0, len(candidates))
	if query == "" {
		for i, c := range candidates {
			matches = append(matches, Match{Index: i, Text: c})
		}
		return matches
	}

	q := []rune(query)
	for i, c := range candidates {
		if score, pos, ok := match(q, c); ok {
			matches = append(matches, Match{Index: i, Text: c, Score: score, Positions: pos})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return b.Score - a.Score
	})
	return matches
}

func match(query []rune, text string) (int, []int, bool) {
	original := []rune(text)
	lower := []rune(strings.ToLower(text))
	if len(lower) != len(original) {
		// Lower-casing changed the rune count; compare case-sensitively.
		lower = original
	}

	pos := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(lower) && qi < len(query); i++ {
		if lower[i] == query[qi] {
			pos = append(pos, i)
			qi++
		}
	}
	if qi != len(query) {
		return 0, nil, false
	}
	return score(query, original, lower, pos), pos, true
}

func score(query, original, lower []rune, pos []int) int {
	s := baseScore
	for i := 1; i < len(pos); i++ {
		if pos[i] == pos[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, p := range pos {
		if isWordBoundary(original, p) {
			s += wordBoundaryBonus
		}
	}
	if pos[0] == 0 {
		s += prefixBonus
	}
	if gap := pos[len(pos)-1] - pos[0] - len(pos) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	s -= pos[0]
	if n := len(lower); n < lengthThreshold {
		s += lengthThreshold - n
	}
	if len(lower) >= len(query) && slices.Equal(lower[:len(query)], query) {
		s += exactPrefixBonus
	}
	return max(s, 1)
}

// isWordBoundary reports whether the rune at i starts a word: the first
// rune, a rune after a separator, or an upper-case rune after a
// lower-case one.
func isWordBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := runes[i-1], runes[i]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
