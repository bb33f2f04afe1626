// Package merge folds a candidate identity's member records into one
// profile with field-level provenance.
package merge

import (
	"sort"
	"strings"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// Config carries the merger's precedence configuration.
type Config struct {
	// SourceAuthority ranks sources from most to least authoritative;
	// sources not listed rank equal and last.
	SourceAuthority []string `json:"source_authority"`
}

// DefaultConfig ranks the academic registries above self-reported
// code-hosting profiles.
func DefaultConfig() Config {
	return Config{SourceAuthority: []string{"openalex", "kaken", "github", "qiita"}}
}

func (c Config) authorityRank(source string) int {
	for i, s := range c.SourceAuthority {
		if s == source {
			return i
		}
	}
	return len(c.SourceAuthority)
}

// Merge derives the profile for one candidate identity. The output is a
// pure function of the identity's membership and the member records:
// re-merging an unchanged membership yields a bit-identical profile.
//
// Field precedence: most recently fetched record wins; on a freshness
// tie, the configured source-authority ranking; on a further tie, the
// lexicographically smallest external id. A freshness-and-authority tie
// between disagreeing values cannot be resolved on merit: the profile
// keeps the deterministic pick but is flagged for review.
func Merge(cfg Config, identity types.CandidateIdentity, records map[types.RecordKey]types.SourceRecord) (types.Profile, []types.Diagnostic) {
	members := make([]types.SourceRecord, 0, len(identity.Members))
	for _, key := range identity.Members {
		if rec, ok := records[key]; ok {
			members = append(members, rec)
		}
	}

	// Precedence order for scalar field selection.
	ordered := make([]types.SourceRecord, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		if !a.FetchedAt.Equal(b.FetchedAt) {
			return a.FetchedAt.After(b.FetchedAt)
		}
		ra, rb := cfg.authorityRank(a.Key.Source), cfg.authorityRank(b.Key.Source)
		if ra != rb {
			return ra < rb
		}
		return a.Key.ExternalID < b.Key.ExternalID
	})

	profile := types.Profile{IdentityID: identity.ID}
	var diags []types.Diagnostic

	considered, conflicts := 0, 0
	selectScalar := func(field string, get func(*types.SourceRecord) string) string {
		distinct := make(map[string]struct{})
		selected := types.Unknown
		var holders []types.SourceRecord
		for i := range ordered {
			v := get(&ordered[i])
			if !types.Known(v) {
				continue
			}
			if selected == types.Unknown {
				selected = v
			}
			if _, ok := distinct[v]; !ok {
				distinct[v] = struct{}{}
				holders = append(holders, ordered[i])
			}
		}
		if len(distinct) == 0 {
			return selected
		}
		considered++
		if len(distinct) > 1 {
			conflicts++
			if unresolvable(cfg, holders[0], holders[1]) {
				err := &MergeConflictError{
					IdentityID: identity.ID,
					Field:      field,
					Values:     sortedKeys(distinct),
				}
				profile.NeedsReview = true
				diags = append(diags, types.Diagnostic{
					Stage:   types.StageMerge,
					Subject: identity.ID,
					Message: err.Error(),
				})
			}
		}
		return selected
	}

	profile.DisplayName = displayName(members)
	if nameConflicts(members) {
		considered++
		conflicts++
	} else if types.Known(profile.DisplayName) {
		considered++
	}

	profile.Email = selectScalar("email", func(r *types.SourceRecord) string { return r.Email })
	profile.Affiliation = selectScalar("affiliation", func(r *types.SourceRecord) string { return r.Affiliation })
	selectScalar("handle", func(r *types.SourceRecord) string { return r.Handle })
	selectScalar("orcid", func(r *types.SourceRecord) string { return r.ORCID })

	profile.Confidence = confidence(considered, conflicts)
	profile.Corpus = corpus(members)
	profile.Contacts = contacts(members)
	profile.Sources = sources(members)
	for i := range members {
		if members[i].FetchedAt.After(profile.LastActiveAt) {
			profile.LastActiveAt = members[i].FetchedAt
		}
	}

	return profile, diags
}

// unresolvable reports whether two disagreeing value holders tie on
// every merit-based precedence key.
func unresolvable(cfg Config, a, b types.SourceRecord) bool {
	return a.FetchedAt.Equal(b.FetchedAt) &&
		cfg.authorityRank(a.Key.Source) == cfg.authorityRank(b.Key.Source)
}

// displayName elects the most frequent member name; ties go to the
// earliest-seen holder, then to the lexicographically smallest value.
func displayName(members []types.SourceRecord) string {
	counts := make(map[string]int)
	earliest := make(map[string]types.SourceRecord)
	for i := range members {
		name := members[i].Name
		if !types.Known(name) {
			continue
		}
		counts[name]++
		if cur, ok := earliest[name]; !ok || members[i].FetchedAt.Before(cur.FetchedAt) {
			earliest[name] = members[i]
		}
	}
	if len(counts) == 0 {
		return types.Unknown
	}

	names := sortedKeys(setOf(counts))
	best := ""
	for _, name := range names {
		if best == "" {
			best = name
			continue
		}
		switch {
		case counts[name] > counts[best]:
			best = name
		case counts[name] == counts[best] && earliest[name].FetchedAt.Before(earliest[best].FetchedAt):
			best = name
		}
	}
	return best
}

func nameConflicts(members []types.SourceRecord) bool {
	distinct := make(map[string]struct{})
	for i := range members {
		if types.Known(members[i].Name) {
			distinct[members[i].Name] = struct{}{}
		}
	}
	return len(distinct) > 1
}

// confidence shrinks as conflicting fields accumulate; adding a
// disagreement never raises it.
func confidence(considered, conflicts int) float64 {
	if considered == 0 {
		return 1
	}
	return 1 - float64(conflicts)/float64(considered+1)
}

// corpus aggregates all member text in sorted member-key order so the
// result is reproducible regardless of membership discovery order.
func corpus(members []types.SourceRecord) string {
	sorted := make([]types.SourceRecord, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key.String() < sorted[j].Key.String() })

	var parts []string
	for i := range sorted {
		if types.Known(sorted[i].Name) {
			parts = append(parts, sorted[i].Name)
		}
		parts = append(parts, sorted[i].FreeText()...)
	}
	return strings.Join(parts, " ")
}

// contacts collects every display/copy-ready value with provenance.
func contacts(members []types.SourceRecord) []types.ContactField {
	var out []types.ContactField
	for i := range members {
		rec := &members[i]
		if types.Known(rec.Email) {
			out = append(out, types.ContactField{Kind: "email", Value: rec.Email, Provenance: rec.Key})
		}
		if types.Known(rec.Handle) {
			out = append(out, types.ContactField{Kind: "handle", Value: rec.Handle, Provenance: rec.Key})
		}
		for _, u := range rec.URLs {
			out = append(out, types.ContactField{Kind: "url", Value: u, Provenance: rec.Key})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Provenance.String() < out[j].Provenance.String()
	})
	if out == nil {
		out = []types.ContactField{}
	}
	return out
}

func sources(members []types.SourceRecord) []string {
	set := make(map[string]struct{})
	for i := range members {
		set[members[i].Key.Source] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setOf(counts map[string]int) map[string]struct{} {
	set := make(map[string]struct{}, len(counts))
	for k := range counts {
		set[k] = struct{}{}
	}
	return set
}
