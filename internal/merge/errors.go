package merge

import "fmt"

// MergeConflictError indicates a field could not be resolved by the
// precedence rules (equally fresh, equally authoritative sources that
// disagree). The profile is still produced with a best-effort value and
// flagged for review.
type MergeConflictError struct {
	IdentityID string
	Field      string
	Values     []string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict on %q for identity %s: precedence rules cannot order %v",
		e.Field, e.IdentityID, e.Values)
}
