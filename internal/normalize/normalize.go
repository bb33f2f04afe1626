// Package normalize converts raw per-source records into the canonical
// SourceRecord schema at the ingestion boundary.
package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// RawRecord is one envelope from the data-collection boundary. The
// payload shape is source-specific; mapping to the canonical schema
// happens here and nowhere else.
type RawRecord struct {
	Source     string         `json:"source"`
	ExternalID string         `json:"external_id"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Payload    map[string]any `json:"payload"`
}

// fieldMap names the payload keys that feed each canonical field, per
// source. Unknown sources fall back to the canonical key names.
type fieldMap struct {
	name        []string
	handle      []string
	email       []string
	orcid       []string
	affiliation []string
	topics      []string
	urls        []string
	summary     []string

	// handleFromID marks sources that key accounts by handle, so the
	// record's external id doubles as one when the payload omits it.
	handleFromID bool
}

var sourceFields = map[string]fieldMap{
	"github": {
		name:         []string{"name", "login"},
		handle:       []string{"login"},
		email:        []string{"email"},
		affiliation:  []string{"company"},
		topics:       []string{"repos", "topics"},
		urls:         []string{"html_url", "blog"},
		summary:      []string{"bio"},
		handleFromID: true,
	},
	"qiita": {
		name:         []string{"name", "id"},
		handle:       []string{"id"},
		affiliation:  []string{"organization"},
		topics:       []string{"tags"},
		urls:         []string{"website_url"},
		summary:      []string{"description"},
		handleFromID: true,
	},
	"openalex": {
		name:        []string{"display_name"},
		orcid:       []string{"orcid"},
		affiliation: []string{"last_known_institution"},
		topics:      []string{"x_concepts", "concepts"},
		summary:     []string{"works_summary"},
	},
	"kaken": {
		name:        []string{"name"},
		orcid:       []string{"orcid"},
		affiliation: []string{"affiliation"},
		topics:      []string{"keywords"},
		summary:     []string{"research_summary"},
	},
}

var genericFields = fieldMap{
	name:        []string{"name"},
	handle:      []string{"handle"},
	email:       []string{"email"},
	orcid:       []string{"orcid"},
	affiliation: []string{"affiliation"},
	topics:      []string{"topics"},
	urls:        []string{"urls", "url"},
	summary:     []string{"summary"},
}

// Normalize converts one raw record into the canonical schema. Fields
// the source did not supply are set to types.Unknown, never silently
// defaulted to the empty string. Normalization is a pure function of
// the raw record, so re-applying it to an already-seen record yields an
// equivalent SourceRecord.
func Normalize(raw RawRecord) (types.SourceRecord, error) {
	if raw.Source == "" {
		return types.SourceRecord{}, &MalformedRecordError{ExternalID: raw.ExternalID, Field: "source"}
	}
	if raw.ExternalID == "" {
		return types.SourceRecord{}, &MalformedRecordError{Source: raw.Source, Field: "external_id"}
	}

	fields, ok := sourceFields[CanonicalizeText(raw.Source)]
	if !ok {
		fields = genericFields
	}

	rec := types.SourceRecord{
		Key: types.RecordKey{
			Source:     CanonicalizeText(raw.Source),
			ExternalID: CanonicalizeText(raw.ExternalID),
		},
		FetchedAt: raw.FetchedAt.UTC().Truncate(time.Second),
	}

	rec.Name = canonicalField(raw.Payload, fields.name, CanonicalizeText)
	rec.Handle = canonicalField(raw.Payload, fields.handle, CanonicalizeHandle)
	if !types.Known(rec.Handle) && fields.handleFromID {
		rec.Handle = CanonicalizeHandle(raw.ExternalID)
	}
	rec.Email = canonicalField(raw.Payload, fields.email, CanonicalizeEmail)
	rec.ORCID = canonicalField(raw.Payload, fields.orcid, CanonicalizeHandle)
	rec.Affiliation = canonicalField(raw.Payload, fields.affiliation, CanonicalizeText)
	rec.Summary = canonicalField(raw.Payload, fields.summary, CanonicalizeText)
	rec.Topics = stringListField(raw.Payload, fields.topics)
	rec.URLs = urlListField(raw.Payload, fields.urls)
	rec.NameVariants = NameVariants(rec.Name)
	if len(rec.NameVariants) == 0 {
		rec.NameVariants = []string{}
	}

	return rec, nil
}

// NormalizeBatch normalizes a batch, dropping malformed records as
// diagnostics instead of aborting sibling records. Output order follows
// input order.
func NormalizeBatch(batch []RawRecord) ([]types.SourceRecord, []types.Diagnostic) {
	records := make([]types.SourceRecord, 0, len(batch))
	var diags []types.Diagnostic

	for _, raw := range batch {
		rec, err := Normalize(raw)
		if err != nil {
			diags = append(diags, types.Diagnostic{
				Stage:   types.StageNormalize,
				Subject: raw.Source + ":" + raw.ExternalID,
				Message: err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, diags
}

func canonicalField(payload map[string]any, keys []string, canon func(string) string) string {
	for _, key := range keys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if c := canon(s); c != "" {
			return c
		}
	}
	return types.Unknown
}

func stringListField(payload map[string]any, keys []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, key := range keys {
		for _, s := range anyStrings(payload[key]) {
			c := CanonicalizeText(s)
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func urlListField(payload map[string]any, keys []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, key := range keys {
		for _, s := range anyStrings(payload[key]) {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// anyStrings coerces a payload value that may be a string or a list of
// strings (decoded JSON yields []any) into a string slice.
func anyStrings(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
