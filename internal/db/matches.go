package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// SaveMatchResults caches the scored results of one requirement query.
// The cache is advisory: profiles stay authoritative, and a later pass
// over the same requirement simply writes a new row set.
func (db *DB) SaveMatchResults(ctx context.Context, requirementID string, snapshotVersion int, results []types.MatchResult) error {
	for _, r := range results {
		terms, err := json.Marshal(r.MatchedTerms)
		if err != nil {
			return fmt.Errorf("failed to marshal matched terms: %w", err)
		}
		_, err = db.pool.Exec(ctx,
			`INSERT INTO match_scores (requirement_id, snapshot_version, profile_id, score, matched_terms)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (requirement_id, profile_id) DO UPDATE
			 SET snapshot_version = $2, score = $4, matched_terms = $5`,
			requirementID, snapshotVersion, r.ProfileID, r.Score, terms,
		)
		if err != nil {
			return fmt.Errorf("failed to save match score for %s: %w", r.ProfileID, err)
		}
	}
	return nil
}

// LoadMatchResults retrieves cached scores for a requirement, best first.
func (db *DB) LoadMatchResults(ctx context.Context, requirementID string) ([]types.MatchResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT profile_id, score, matched_terms FROM match_scores
		 WHERE requirement_id = $1 ORDER BY score DESC, profile_id ASC`,
		requirementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load match scores: %w", err)
	}
	defer rows.Close()

	var results []types.MatchResult
	for rows.Next() {
		r := types.MatchResult{RequirementID: requirementID}
		var terms []byte
		if err := rows.Scan(&r.ProfileID, &r.Score, &terms); err != nil {
			return nil, fmt.Errorf("failed to scan match score: %w", err)
		}
		if err := json.Unmarshal(terms, &r.MatchedTerms); err != nil {
			return nil, fmt.Errorf("failed to decode matched terms: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}
