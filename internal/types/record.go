// Package types provides type definitions for structured data used throughout the talent-sourcer system.
package types

import (
	"fmt"
	"time"
)

// Unknown marks a canonical field whose source did not supply a value.
// It is distinct from the empty string, which means the source supplied
// an explicitly empty value.
const Unknown = "<unknown>"

// Known reports whether a canonical field carries a usable value.
func Known(v string) bool {
	return v != "" && v != Unknown
}

// RecordKey uniquely identifies a source record by (source, external id).
type RecordKey struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s:%s", k.Source, k.ExternalID)
}

// SourceRecord is the canonical, normalized form of one raw per-source
// profile fragment. Records are immutable once created; a re-fetch
// produces a new record with a later FetchedAt, never a mutation.
type SourceRecord struct {
	Key          RecordKey `json:"key"`
	Name         string    `json:"name"`
	NameVariants []string  `json:"name_variants"`
	Handle       string    `json:"handle"`
	Email        string    `json:"email"`
	ORCID        string    `json:"orcid"`
	Affiliation  string    `json:"affiliation"`
	Topics       []string  `json:"topics"`
	URLs         []string  `json:"urls"`
	Summary      string    `json:"summary"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// FreeText returns the text fields of the record that feed the
// aggregated profile corpus, in a fixed order.
func (r *SourceRecord) FreeText() []string {
	out := make([]string, 0, 3+len(r.Topics))
	if Known(r.Summary) {
		out = append(out, r.Summary)
	}
	if Known(r.Affiliation) {
		out = append(out, r.Affiliation)
	}
	for _, t := range r.Topics {
		if Known(t) {
			out = append(out, t)
		}
	}
	return out
}
