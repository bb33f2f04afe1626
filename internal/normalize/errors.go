package normalize

import "fmt"

// MalformedRecordError indicates a raw record is missing a mandatory
// identifying field. The record is dropped; sibling records in the
// same batch are unaffected.
type MalformedRecordError struct {
	Source     string
	ExternalID string
	Field      string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record (source=%q, external_id=%q): missing mandatory field %q",
		e.Source, e.ExternalID, e.Field)
}
