// Package score computes requirement-to-profile similarity scores.
package score

import "sort"

// Cosine returns the cosine similarity of two sparse L2-normalized
// term-weight vectors, clamped to [0,1], together with the shared terms
// that contributed non-zero weight (sorted, for explainability).
// Term-frequency weights are non-negative, so a negative cosine carries
// no meaning and is clamped to 0.
func Cosine(requirement, profile map[string]float64) (float64, []string) {
	small, large := requirement, profile
	if len(large) < len(small) {
		small, large = large, small
	}

	var dot float64
	var shared []string
	for term, w := range small {
		if w == 0 {
			continue
		}
		if ow, ok := large[term]; ok && ow != 0 {
			dot += w * ow
			shared = append(shared, term)
		}
	}

	if dot < 0 {
		dot = 0
	}
	if dot > 1 {
		dot = 1
	}
	sort.Strings(shared)
	return dot, shared
}
