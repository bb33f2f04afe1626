package types

import "time"

// RequirementFilters narrows the candidate set ahead of relevance
// scoring. All filters are optional.
type RequirementFilters struct {
	Sources  []string `json:"sources,omitempty"`   // restrict to profiles with a record from any of these sources
	Keyword  string   `json:"keyword,omitempty"`   // case-insensitive substring over name and corpus
	MinScore float64  `json:"min_score,omitempty"` // drop results scoring below this value
}

// Requirement is a free-text hiring requirement plus optional
// structured filters. It is ephemeral and never persisted beyond the
// lifetime of one query.
type Requirement struct {
	Text    string             `json:"text"`
	Filters RequirementFilters `json:"filters"`
}

// MatchResult is one scored profile for one requirement snapshot.
// Cached results are never the source of truth for a profile.
type MatchResult struct {
	ProfileID     string         `json:"profile_id"`
	RequirementID string         `json:"requirement_id"`
	Score         float64        `json:"score"`
	MatchedTerms  []string       `json:"matched_terms"`
	DisplayName   string         `json:"display_name"`
	Contacts      []ContactField `json:"contacts"`
	LastActiveAt  time.Time      `json:"last_active_at"`
}
