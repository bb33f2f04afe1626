package merge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-sourcer/internal/types"
)

func memberRecord(source, externalID string, fetched time.Time, mut func(*types.SourceRecord)) types.SourceRecord {
	rec := types.SourceRecord{
		Key:          types.RecordKey{Source: source, ExternalID: externalID},
		Name:         types.Unknown,
		NameVariants: []string{},
		Handle:       types.Unknown,
		Email:        types.Unknown,
		ORCID:        types.Unknown,
		Affiliation:  types.Unknown,
		Topics:       []string{},
		URLs:         []string{},
		Summary:      types.Unknown,
		FetchedAt:    fetched,
	}
	if mut != nil {
		mut(&rec)
	}
	return rec
}

func identityOf(records ...types.SourceRecord) (types.CandidateIdentity, map[types.RecordKey]types.SourceRecord) {
	byKey := make(map[types.RecordKey]types.SourceRecord, len(records))
	members := make([]types.RecordKey, 0, len(records))
	for _, rec := range records {
		byKey[rec.Key] = rec
		members = append(members, rec.Key)
	}
	id := types.CandidateIdentity{ID: members[0].String(), Members: members, Cohesion: 1}
	return id, byKey
}

var (
	t0 = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
)

func TestMerge_Idempotent(t *testing.T) {
	identity, records := identityOf(
		memberRecord("github", "taro", t0, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Email = "taro@example.com"
			r.Summary = "nlp engineer"
		}),
		memberRecord("qiita", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Summary = "python nltk"
		}),
	)

	first, _ := Merge(DefaultConfig(), identity, records)
	second, _ := Merge(DefaultConfig(), identity, records)
	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "re-merging an unchanged membership must be bit-identical")
}

func TestMerge_FreshnessWins(t *testing.T) {
	identity, records := identityOf(
		memberRecord("github", "taro", t0, func(r *types.SourceRecord) { r.Affiliation = "old corp" }),
		memberRecord("qiita", "taro", t1, func(r *types.SourceRecord) { r.Affiliation = "new corp" }),
	)

	profile, _ := Merge(DefaultConfig(), identity, records)
	assert.Equal(t, "new corp", profile.Affiliation)
	assert.False(t, profile.NeedsReview, "freshness resolves the conflict")
}

func TestMerge_AuthorityBreaksFreshnessTie(t *testing.T) {
	identity, records := identityOf(
		memberRecord("github", "taro", t1, func(r *types.SourceRecord) { r.Affiliation = "github corp" }),
		memberRecord("openalex", "a1", t1, func(r *types.SourceRecord) { r.Affiliation = "tokyo university" }),
	)

	profile, _ := Merge(DefaultConfig(), identity, records)
	assert.Equal(t, "tokyo university", profile.Affiliation, "openalex outranks github in the default authority order")
}

func TestMerge_UnresolvableTieFlagsReview(t *testing.T) {
	// Two unranked sources, identical fetch instant, disagreeing values.
	identity, records := identityOf(
		memberRecord("blogA", "x", t1, func(r *types.SourceRecord) { r.Affiliation = "acme" }),
		memberRecord("blogB", "y", t1, func(r *types.SourceRecord) { r.Affiliation = "globex" }),
	)

	profile, diags := Merge(DefaultConfig(), identity, records)
	assert.True(t, profile.NeedsReview)
	require.NotEmpty(t, diags)
	assert.Equal(t, types.StageMerge, diags[0].Stage)
	assert.Contains(t, diags[0].Message, "merge conflict")
	// Best-effort value is still produced.
	assert.Contains(t, []string{"acme", "globex"}, profile.Affiliation)
}

func TestMerge_DisplayNameFrequency(t *testing.T) {
	identity, records := identityOf(
		memberRecord("github", "taro", t0, func(r *types.SourceRecord) { r.Name = "taro yamada" }),
		memberRecord("qiita", "taro", t0, func(r *types.SourceRecord) { r.Name = "taro yamada" }),
		memberRecord("openalex", "a1", t1, func(r *types.SourceRecord) { r.Name = "t. yamada" }),
	)

	profile, _ := Merge(DefaultConfig(), identity, records)
	assert.Equal(t, "taro yamada", profile.DisplayName)
}

func TestMerge_ConfidenceNonIncreasing(t *testing.T) {
	agreeing, agreeingRecords := identityOf(
		memberRecord("github", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Affiliation = "acme"
		}),
		memberRecord("qiita", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Affiliation = "acme"
		}),
	)
	oneConflict, oneConflictRecords := identityOf(
		memberRecord("github", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Affiliation = "acme"
		}),
		memberRecord("qiita", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Affiliation = "globex"
		}),
	)
	twoConflicts, twoConflictRecords := identityOf(
		memberRecord("github", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "taro yamada"
			r.Affiliation = "acme"
		}),
		memberRecord("qiita", "taro", t1, func(r *types.SourceRecord) {
			r.Name = "yamada taro"
			r.Affiliation = "globex"
		}),
	)

	clean, _ := Merge(DefaultConfig(), agreeing, agreeingRecords)
	one, _ := Merge(DefaultConfig(), oneConflict, oneConflictRecords)
	two, _ := Merge(DefaultConfig(), twoConflicts, twoConflictRecords)

	assert.Equal(t, 1.0, clean.Confidence)
	assert.Less(t, one.Confidence, clean.Confidence)
	assert.Less(t, two.Confidence, one.Confidence)
}

func TestMerge_ContactProvenance(t *testing.T) {
	githubKey := types.RecordKey{Source: "github", ExternalID: "taro_yamada"}
	qiitaKey := types.RecordKey{Source: "qiita", ExternalID: "taro_yamada"}

	identity, records := identityOf(
		memberRecord("github", "taro_yamada", t0, func(r *types.SourceRecord) {
			r.Handle = "taro_yamada"
			r.Email = "taro@example.com"
		}),
		memberRecord("qiita", "taro_yamada", t0, func(r *types.SourceRecord) {
			r.Handle = "taro_yamada"
		}),
	)

	profile, _ := Merge(DefaultConfig(), identity, records)
	require.Len(t, profile.Contacts, 3)

	byProvenance := make(map[string][]string)
	for _, c := range profile.Contacts {
		byProvenance[c.Provenance.String()] = append(byProvenance[c.Provenance.String()], c.Kind)
	}
	assert.ElementsMatch(t, []string{"email", "handle"}, byProvenance[githubKey.String()])
	assert.ElementsMatch(t, []string{"handle"}, byProvenance[qiitaKey.String()])
}

func TestMerge_SingletonConfidence(t *testing.T) {
	identity, records := identityOf(
		memberRecord("github", "solo", t0, func(r *types.SourceRecord) { r.Name = "solo dev" }),
	)
	profile, diags := Merge(DefaultConfig(), identity, records)
	assert.Equal(t, 1.0, profile.Confidence)
	assert.Empty(t, diags)
	assert.Equal(t, "solo dev", profile.DisplayName)
}
