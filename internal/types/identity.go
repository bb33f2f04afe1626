package types

// CandidateIdentity is a cluster of source records believed to describe
// one real person. A record belongs to at most one identity at a time.
type CandidateIdentity struct {
	// ID is the lexicographically smallest member key, which makes the
	// identifier stable across passes and input permutations.
	ID       string      `json:"id"`
	Members  []RecordKey `json:"members"`
	Cohesion float64     `json:"cohesion"`
}

// Size returns the number of member records.
func (c *CandidateIdentity) Size() int {
	return len(c.Members)
}
