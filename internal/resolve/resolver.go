// Package resolve partitions normalized source records into candidate
// identity clusters via blocking, pairwise scoring and union-find.
package resolve

import (
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// Config carries the resolver's tunables. Both are calibration inputs;
// see Weights.
type Config struct {
	// Threshold is τ: a pair merges only when its score is strictly
	// greater than τ. A pair scoring exactly τ stays unmerged, which
	// biases the partition toward precision over recall.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
	Weights   Weights `json:"weights"`
}

// DefaultConfig returns the default resolver calibration.
func DefaultConfig() Config {
	return Config{Threshold: 0.60, Weights: DefaultWeights()}
}

// SplitEvent records that a previously merged cluster no longer holds
// together under the current record set.
type SplitEvent struct {
	PreviousID string   `json:"previous_id"`
	NewIDs     []string `json:"new_ids"`
}

// Result is the output of one resolution pass.
type Result struct {
	Identities  []types.CandidateIdentity
	Splits      []SplitEvent
	Diagnostics []types.Diagnostic
}

// recordPair addresses a scored pair by arena ids, lo < hi.
type recordPair struct {
	lo, hi int
}

// Resolve partitions records into candidate identities. The partition
// is a pure function of the record set and config: input order never
// influences the result, and re-running over an unchanged set
// reproduces the identical partition. previous may carry the partition
// from the last pass so that clusters that no longer hold together are
// reported as explicit split events instead of disappearing silently.
func Resolve(cfg Config, logger *zap.Logger, records []types.SourceRecord, previous []types.CandidateIdentity) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Arena: records addressed by dense ids, ordered by key so ids are
	// stable under input permutation.
	arena := make([]types.SourceRecord, len(records))
	copy(arena, records)
	sort.Slice(arena, func(i, j int) bool {
		return arena[i].Key.String() < arena[j].Key.String()
	})

	var result Result

	// Blocking.
	blocks := make(map[string][]int)
	for id := range arena {
		keys := blockingKeys(&arena[id])
		if len(keys) == 0 {
			err := &ResolutionAmbiguityError{RecordKey: arena[id].Key.String()}
			result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
				Stage:   types.StageResolve,
				Subject: arena[id].Key.String(),
				Message: err.Error(),
			})
			continue
		}
		for _, key := range keys {
			blocks[key] = append(blocks[key], id)
		}
	}

	// Pairwise scoring, one score per in-block pair.
	scores := make(map[recordPair]float64)
	for _, ids := range blocks {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := recordPair{lo: ids[i], hi: ids[j]}
				if pair.lo > pair.hi {
					pair.lo, pair.hi = pair.hi, pair.lo
				}
				if _, done := scores[pair]; done {
					continue
				}
				scores[pair] = scorePair(cfg.Weights, &arena[pair.lo], &arena[pair.hi])
			}
		}
	}

	// Clustering. Unions are applied in canonical score-sorted order,
	// not map iteration order, so the visit order can never leak into
	// the partition.
	merges := make([]recordPair, 0, len(scores))
	for pair, score := range scores {
		if score > cfg.Threshold {
			merges = append(merges, pair)
		}
	}
	sort.Slice(merges, func(i, j int) bool {
		si, sj := scores[merges[i]], scores[merges[j]]
		if si != sj {
			return si > sj
		}
		if merges[i].lo != merges[j].lo {
			return merges[i].lo < merges[j].lo
		}
		return merges[i].hi < merges[j].hi
	})

	uf := newUnionFind(len(arena))
	for _, pair := range merges {
		uf.union(pair.lo, pair.hi)
	}

	// Materialize clusters.
	groups := make(map[int][]int)
	for id := range arena {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	identities := make([]types.CandidateIdentity, 0, len(groups))
	for _, ids := range groups {
		sort.Ints(ids)
		members := make([]types.RecordKey, len(ids))
		for i, id := range ids {
			members[i] = arena[id].Key
		}
		identities = append(identities, types.CandidateIdentity{
			ID:       members[0].String(),
			Members:  members,
			Cohesion: cohesion(ids, scores),
		})
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].ID < identities[j].ID })
	result.Identities = identities

	result.Splits = detectSplits(previous, identities)
	for _, split := range result.Splits {
		logger.Warn("previously merged, now split",
			zap.String("previous_id", split.PreviousID),
			zap.Strings("new_ids", split.NewIDs),
		)
		result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
			Stage:   types.StageResolve,
			Subject: split.PreviousID,
			Message: "previously merged, now split",
		})
	}

	return result
}

// cohesion is the mean pairwise score over all member pairs; pairs that
// never shared a block contribute 0. Singletons are trivially cohesive.
func cohesion(ids []int, scores map[recordPair]float64) float64 {
	n := len(ids)
	if n < 2 {
		return 1
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += scores[recordPair{lo: ids[i], hi: ids[j]}]
		}
	}
	return sum / float64(n*(n-1)/2)
}

// detectSplits compares the previous partition to the current one and
// reports every previous multi-member cluster whose surviving members
// now land in more than one cluster.
func detectSplits(previous, current []types.CandidateIdentity) []SplitEvent {
	if len(previous) == 0 {
		return nil
	}
	clusterOf := make(map[types.RecordKey]string)
	for _, id := range current {
		for _, member := range id.Members {
			clusterOf[member] = id.ID
		}
	}

	var splits []SplitEvent
	for _, prev := range previous {
		if len(prev.Members) < 2 {
			continue
		}
		seen := make(map[string]struct{})
		var newIDs []string
		for _, member := range prev.Members {
			id, ok := clusterOf[member]
			if !ok {
				continue // record no longer in the working set
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			newIDs = append(newIDs, id)
		}
		if len(newIDs) > 1 {
			sort.Strings(newIDs)
			splits = append(splits, SplitEvent{PreviousID: prev.ID, NewIDs: newIDs})
		}
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].PreviousID < splits[j].PreviousID })
	return splits
}
