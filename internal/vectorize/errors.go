package vectorize

import "fmt"

// VectorizationError indicates a document produced no usable terms
// (empty or unsupported text). Callers treat the document as a zero
// vector rather than failing the query.
type VectorizationError struct {
	Reason string
}

func (e *VectorizationError) Error() string {
	return fmt.Sprintf("vectorization produced no terms: %s", e.Reason)
}
