package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// Weights holds the relative weight of each field-level similarity in
// the pairwise score. Each field similarity is normalized to [0,1]
// before weighting; the weighted sum is renormalized over the fields
// both records actually carry. The exact values are calibration
// inputs, not ground truth.
type Weights struct {
	Name        float64 `json:"name" validate:"gte=0"`
	Handle      float64 `json:"handle" validate:"gte=0"`
	Topics      float64 `json:"topics" validate:"gte=0"`
	Affiliation float64 `json:"affiliation" validate:"gte=0"`
}

// DefaultWeights are the starting calibration for pairwise scoring.
func DefaultWeights() Weights {
	return Weights{Name: 0.35, Handle: 0.25, Topics: 0.25, Affiliation: 0.15}
}

// scorePair computes the pairwise match score for two records in [0,1].
//
// Exact external identifiers dominate: a shared ORCID or email scores
// 1.0 outright, while conflicting ORCIDs (or two accounts on the same
// source) score 0.0 so the pair can never merge.
func scorePair(w Weights, a, b *types.SourceRecord) float64 {
	if a.Key.Source == b.Key.Source {
		return 0
	}
	if types.Known(a.ORCID) && types.Known(b.ORCID) {
		if a.ORCID == b.ORCID {
			return 1
		}
		return 0
	}
	if types.Known(a.Email) && types.Known(b.Email) && a.Email == b.Email {
		return 1
	}

	var sum, weight float64
	if s, ok := nameSimilarity(a, b); ok {
		sum += w.Name * s
		weight += w.Name
	}
	if s, ok := handleSimilarity(a, b); ok {
		sum += w.Handle * s
		weight += w.Handle
	}
	if s, ok := jaccard(slugSet(a.Topics), slugSet(b.Topics)); ok {
		sum += w.Topics * s
		weight += w.Topics
	}
	if s, ok := affiliationSimilarity(a, b); ok {
		sum += w.Affiliation * s
		weight += w.Affiliation
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// nameForms collects every comparable spelling of a record's name: the
// ordered name variants, their underscore forms, and the handle. The
// handle is included so a transliterated handle can still meet a
// reordered latin name.
func nameForms(rec *types.SourceRecord) []string {
	var forms []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if !types.Known(v) {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		forms = append(forms, v)
	}
	for _, v := range rec.NameVariants {
		add(v)
		add(strings.ReplaceAll(v, " ", "_"))
	}
	add(rec.Handle)
	return forms
}

func nameSimilarity(a, b *types.SourceRecord) (float64, bool) {
	return bestEditSimilarity(nameForms(a), nameForms(b))
}

func handleSimilarity(a, b *types.SourceRecord) (float64, bool) {
	if !types.Known(a.Handle) || !types.Known(b.Handle) {
		return 0, false
	}
	return editSimilarity(a.Handle, b.Handle), true
}

func affiliationSimilarity(a, b *types.SourceRecord) (float64, bool) {
	if !types.Known(a.Affiliation) || !types.Known(b.Affiliation) {
		return 0, false
	}
	return jaccard(tokenSet(a.Affiliation), tokenSet(b.Affiliation))
}

// bestEditSimilarity returns the highest edit similarity over the cross
// product of two form lists.
func bestEditSimilarity(a, b []string) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			if s := editSimilarity(x, y); s > best {
				best = s
			}
		}
	}
	return best, true
}

// editSimilarity normalizes Levenshtein distance into [0,1].
func editSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	if d >= longest {
		return 0
	}
	return 1 - float64(d)/float64(longest)
}

func jaccard(a, b map[string]struct{}) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	inter := 0
	for v := range a {
		if _, ok := b[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union), true
}

func slugSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		if slug := topicSlug(t); slug != "" {
			set[slug] = struct{}{}
		}
	}
	return set
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
