// Package rank orders scored match results into a strict total order
// and serves cursor-paginated pages over a fixed snapshot.
package rank

import (
	"sort"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// Order sorts results into the strict total order: descending score,
// then descending most-recent source activity, then ascending profile
// id. The profile id is unique, so no tie survives.
func Order(results []types.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastActiveAt.Equal(b.LastActiveAt) {
			return a.LastActiveAt.After(b.LastActiveAt)
		}
		return a.ProfileID < b.ProfileID
	})
}
