package trm

import "strings"

// TextChangeRatio is 1 - Jaccard similarity over lowercased word sets,
// shared by every candidate generator and the GFS filter so "how much did
// this rewrite change" means the same thing everywhere.
func TextChangeRatio(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	jaccard := float64(intersection) / float64(union)
	return 1 - jaccard
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.Trim(w, ".,;:!?\"'()")] = true
	}
	return set
}
