package types

// Diagnostic stages.
const (
	StageNormalize = "normalize"
	StageResolve   = "resolve"
	StageMerge     = "merge"
	StageVectorize = "vectorize"
)

// Diagnostic is a structured, non-fatal problem report surfaced to the
// calling layer. A diagnostic never aborts processing of sibling
// records or clusters.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"` // record key or identity id
	Message string `json:"message"`
}
