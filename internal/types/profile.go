package types

import "time"

// ContactField is one display/copy-ready contact value together with a
// provenance pointer back to the source record that supplied it.
type ContactField struct {
	Kind       string    `json:"kind"` // "email", "handle" or "url"
	Value      string    `json:"value"`
	Provenance RecordKey `json:"provenance"`
}

// Profile is the merged view of one candidate identity. It is derived
// deterministically from the identity's membership: recomputing over
// identical membership yields an identical profile.
type Profile struct {
	IdentityID   string         `json:"identity_id"`
	DisplayName  string         `json:"display_name"`
	Email        string         `json:"email"`
	Affiliation  string         `json:"affiliation"`
	Corpus       string         `json:"corpus"`
	Contacts     []ContactField `json:"contacts"`
	Confidence   float64        `json:"confidence"`
	NeedsReview  bool           `json:"needs_review"`
	LastActiveAt time.Time      `json:"last_active_at"`
	Sources      []string       `json:"sources"`
}

// HasSource reports whether any member record came from the given source.
func (p *Profile) HasSource(source string) bool {
	for _, s := range p.Sources {
		if s == source {
			return true
		}
	}
	return false
}
