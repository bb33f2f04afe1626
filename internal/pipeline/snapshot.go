package pipeline

import (
	"time"

	"github.com/jonathan/talent-sourcer/internal/resolve"
	"github.com/jonathan/talent-sourcer/internal/types"
)

// Snapshot is one published, immutable view of the resolved state.
// Readers always see a complete snapshot: a resolution pass builds the
// whole next snapshot before it is swapped in, so a partially merged
// intermediate state is never observable.
type Snapshot struct {
	Version     int                                    `json:"version"`
	PublishedAt time.Time                              `json:"published_at"`
	Records     map[types.RecordKey]types.SourceRecord `json:"-"`
	Identities  []types.CandidateIdentity              `json:"identities"`
	Profiles    []types.Profile                        `json:"profiles"`
	Splits      []resolve.SplitEvent                   `json:"splits,omitempty"`
	Diagnostics []types.Diagnostic                     `json:"diagnostics,omitempty"`
}

// Profile returns the profile with the given identity id, if present.
func (s *Snapshot) Profile(identityID string) (types.Profile, bool) {
	for i := range s.Profiles {
		if s.Profiles[i].IdentityID == identityID {
			return s.Profiles[i], true
		}
	}
	return types.Profile{}, false
}
