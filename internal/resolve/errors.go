package resolve

import "fmt"

// ResolutionAmbiguityError indicates a record could not participate in
// candidate comparison (no usable blocking key). It is non-fatal: the
// record becomes its own singleton identity and the error is surfaced
// as a diagnostic.
type ResolutionAmbiguityError struct {
	RecordKey string
}

func (e *ResolutionAmbiguityError) Error() string {
	return fmt.Sprintf("record %s has no usable blocking key; kept as singleton identity", e.RecordKey)
}
