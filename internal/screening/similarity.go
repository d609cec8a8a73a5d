// internal/screening/similarity.go
package screening

import "strings"

// substringBonus rewards full containment of one name in the other. It is
// added after the Jaccard score; the clip to 1.0 happens after the bonus.
const substringBonus = 0.3

// SimilarityScore compares two names with a Jaccard word-overlap score plus
// a substring-containment bonus, clipped to [0, 1]. Comparison is
// case-insensitive, and the function is symmetric in its arguments.
func SimilarityScore(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}

	wordsA := wordSet(a)
	wordsB := wordSet(b)

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	score := float64(intersection) / float64(union)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		score += substringBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
