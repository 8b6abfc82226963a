package invoke

import "strings"

// normalize lowercases and strips non-alphanumerics.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// editDistance is the classic Levenshtein distance between a and b.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Suggestion is the outcome of matching an attempted tool name against the
// server's actual tool list.
type Suggestion struct {
	// Name is the matched tool name. Empty when no usable match exists.
	Name string
	// Distance is the edit distance between the normalized names.
	Distance int
	// AutoCorrect is true when the match is close enough to silently
	// retry (distance <= 2, or <= 1 for short names) and unique.
	AutoCorrect bool
}

// maxAutoCorrectDistance returns the auto-correct threshold for a name of
// the given (normalized) length: distance <= 2, or <= 1 on short names.
func maxAutoCorrectDistance(normalizedLen int) int {
	if normalizedLen <= 4 {
		return 1
	}
	return 2
}

// maxSuggestDistance is the looser threshold for a "Did you mean ...?"
// hint that doesn't auto-retry.
const maxSuggestDistance = 3

// FindSuggestion computes the closest match for attempted among available
// tool names.
func FindSuggestion(attempted string, available []string) Suggestion {
	target := normalize(attempted)

	best := Suggestion{Distance: -1}
	ties := 0
	for _, candidate := range available {
		d := editDistance(target, normalize(candidate))
		if best.Distance == -1 || d < best.Distance {
			best = Suggestion{Name: candidate, Distance: d}
			ties = 1
		} else if d == best.Distance {
			ties++
		}
	}

	if best.Distance == -1 || ties != 1 {
		return Suggestion{}
	}

	if best.Distance <= maxAutoCorrectDistance(len(target)) {
		best.AutoCorrect = true
		return best
	}
	if best.Distance <= maxSuggestDistance {
		return best
	}
	return Suggestion{}
}
