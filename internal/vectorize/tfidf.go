// Package vectorize builds comparable TF-IDF representations of profile
// and requirement text over a shared, frozen vocabulary.
package vectorize

import (
	"math"
)

// Model is a TF-IDF weighting fitted over one corpus. The vocabulary is
// frozen at fit time: query-time terms outside it are ignored, so a
// fixed corpus and fixed text always yield an identical vector.
type Model struct {
	idf  map[string]float64
	docs int
}

// Fit tokenizes the corpus and computes smoothed inverse document
// frequencies: idf(t) = ln((1+N)/(1+df(t))) + 1. The smoothing keeps
// every fitted term's weight finite and positive.
func Fit(corpus []string) *Model {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(doc) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	m := &Model{idf: make(map[string]float64, len(df)), docs: len(corpus)}
	n := float64(len(corpus))
	for term, count := range df {
		m.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return m
}

// VocabularySize returns the number of fitted terms.
func (m *Model) VocabularySize() int {
	return len(m.idf)
}

// Vector computes the L2-normalized TF-IDF vector of one document as a
// sparse term-to-weight map. Terms absent from the fitted vocabulary
// are dropped. A document with no tokens at all returns a zero vector
// together with a VectorizationError so the caller can surface a
// diagnostic without failing the query.
func (m *Model) Vector(text string) (map[string]float64, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return map[string]float64{}, &VectorizationError{Reason: "empty or unsupported text"}
	}

	counts := make(map[string]float64)
	for _, term := range tokens {
		if _, known := m.idf[term]; known {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return map[string]float64{}, nil
	}

	var norm float64
	for term, tf := range counts {
		w := tf * m.idf[term]
		counts[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for term := range counts {
		counts[term] /= norm
	}
	return counts, nil
}
