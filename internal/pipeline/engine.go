// Package pipeline orchestrates the record-to-ranking flow: intake,
// resolution passes, snapshot publication and the read-only query path.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-sourcer/internal/config"
	"github.com/jonathan/talent-sourcer/internal/merge"
	"github.com/jonathan/talent-sourcer/internal/normalize"
	"github.com/jonathan/talent-sourcer/internal/rank"
	"github.com/jonathan/talent-sourcer/internal/resolve"
	"github.com/jonathan/talent-sourcer/internal/schemas"
	"github.com/jonathan/talent-sourcer/internal/score"
	"github.com/jonathan/talent-sourcer/internal/types"
	"github.com/jonathan/talent-sourcer/internal/vectorize"
)

// Engine holds the working record set and the most recently published
// snapshot. Resolution passes are single-writer; queries are served
// from the published snapshot and never block behind a running pass.
type Engine struct {
	cfg config.Config
	log *zap.Logger

	// passMu serializes passes so published versions are strictly
	// increasing even under concurrent pass triggers.
	passMu sync.Mutex

	mu      sync.RWMutex
	records map[types.RecordKey]types.SourceRecord
	snap    *Snapshot
}

// New creates an engine with an empty published snapshot.
func New(cfg config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		log:     logger,
		records: make(map[types.RecordKey]types.SourceRecord),
		snap: &Snapshot{
			Records:  map[types.RecordKey]types.SourceRecord{},
			Profiles: []types.Profile{},
		},
	}
}

// IngestRaw validates a raw batch document, normalizes it and adds the
// resulting records to the working set. Malformed records surface as
// diagnostics without aborting their siblings; a batch failing schema
// validation is rejected whole.
func (e *Engine) IngestRaw(data []byte) (int, []types.Diagnostic, error) {
	if err := schemas.ValidateRawBatch(data); err != nil {
		return 0, nil, err
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return 0, nil, fmt.Errorf("failed to decode raw batch: %w", err)
	}

	// Records decode one at a time: an element with, say, an
	// unparseable fetched_at drops alone instead of taking its
	// siblings with it.
	batch := make([]normalize.RawRecord, 0, len(elements))
	var diags []types.Diagnostic
	for _, element := range elements {
		var raw normalize.RawRecord
		if err := json.Unmarshal(element, &raw); err != nil {
			var head struct {
				Source     string `json:"source"`
				ExternalID string `json:"external_id"`
			}
			_ = json.Unmarshal(element, &head)
			diags = append(diags, types.Diagnostic{
				Stage:   types.StageNormalize,
				Subject: head.Source + ":" + head.ExternalID,
				Message: err.Error(),
			})
			continue
		}
		batch = append(batch, raw)
	}

	records, normDiags := normalize.NormalizeBatch(batch)
	diags = append(diags, normDiags...)
	e.AddRecords(records)
	return len(records), diags, nil
}

// AddRecords upserts normalized records into the working set. A record
// with the same key replaces the previous version only when fetched
// later; records themselves stay immutable.
func (e *Engine) AddRecords(records []types.SourceRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range records {
		if prev, ok := e.records[rec.Key]; ok && prev.FetchedAt.After(rec.FetchedAt) {
			continue
		}
		e.records[rec.Key] = rec
	}
}

// RecordCount returns the size of the working record set.
func (e *Engine) RecordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// WorkingSet returns a copy of the working record set, sorted by key.
func (e *Engine) WorkingSet() []types.SourceRecord {
	e.mu.RLock()
	records := make([]types.SourceRecord, 0, len(e.records))
	for _, rec := range e.records {
		records = append(records, rec)
	}
	e.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
	return records
}

// RunPass executes one full resolution-and-merge pass over the working
// set and publishes the result as a new snapshot. The pass builds the
// entire next snapshot before the swap, so a failed or cancelled pass
// leaves the previous snapshot untouched; re-running it is safe and
// reproduces the same output for the same record set.
func (e *Engine) RunPass(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.passMu.Lock()
	defer e.passMu.Unlock()

	e.mu.RLock()
	records := make([]types.SourceRecord, 0, len(e.records))
	byKey := make(map[types.RecordKey]types.SourceRecord, len(e.records))
	for key, rec := range e.records {
		records = append(records, rec)
		byKey[key] = rec
	}
	previous := e.snap.Identities
	version := e.snap.Version
	e.mu.RUnlock()

	result := resolve.Resolve(e.cfg.Resolver, e.log, records, previous)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profiles := make([]types.Profile, 0, len(result.Identities))
	diags := result.Diagnostics
	for _, identity := range result.Identities {
		profile, mergeDiags := merge.Merge(e.cfg.Merger, identity, byKey)
		profiles = append(profiles, profile)
		diags = append(diags, mergeDiags...)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].IdentityID < profiles[j].IdentityID })

	next := &Snapshot{
		Version:     version + 1,
		PublishedAt: time.Now().UTC(),
		Records:     byKey,
		Identities:  result.Identities,
		Profiles:    profiles,
		Splits:      result.Splits,
		Diagnostics: diags,
	}

	e.mu.Lock()
	e.snap = next
	e.mu.Unlock()

	e.log.Info("resolution pass published",
		zap.Int("version", next.Version),
		zap.Int("records", len(records)),
		zap.Int("identities", len(next.Identities)),
		zap.Int("splits", len(next.Splits)),
		zap.Int("diagnostics", len(diags)),
	)
	return next, nil
}

// Restore seeds the engine with a previously published snapshot, so
// the next pass can detect splits against it. Records attached to the
// snapshot join the working set.
func (e *Engine) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	e.mu.Lock()
	e.snap = snap
	for key, rec := range snap.Records {
		if prev, ok := e.records[key]; ok && prev.FetchedAt.After(rec.FetchedAt) {
			continue
		}
		e.records[key] = rec
	}
	e.mu.Unlock()
}

// Snapshot returns the most recently published snapshot.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// maxPageSize bounds one result page regardless of what the caller
// asks for, matching the configurable page-size ceiling.
const maxPageSize = 100

// QueryResult is one page of ranked matches for a requirement.
type QueryResult struct {
	RequirementID   string              `json:"requirement_id"`
	SnapshotVersion int                 `json:"snapshot_version"`
	Total           int                 `json:"total"`
	Results         []types.MatchResult `json:"results"`
	NextCursor      string              `json:"next_cursor,omitempty"`
	Diagnostics     []types.Diagnostic  `json:"diagnostics,omitempty"`
}

// Query scores the published profiles against a requirement and returns
// one ranked, paginated page. The whole computation runs read-only over
// one snapshot; per-profile vectorization is parallel since profiles
// carry no ordering dependency.
func (e *Engine) Query(ctx context.Context, req types.Requirement, cursor string, pageSize int) (*QueryResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("requirement text is empty")
	}
	if pageSize <= 0 {
		pageSize = e.cfg.PageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	snap := e.Snapshot()
	out := &QueryResult{
		RequirementID:   uuid.NewString(),
		SnapshotVersion: snap.Version,
		Results:         []types.MatchResult{},
	}

	profiles := filterProfiles(snap.Profiles, req.Filters)
	if len(profiles) == 0 {
		return out, nil
	}

	// The vocabulary spans the requirement plus every candidate corpus.
	corpus := make([]string, 0, len(profiles)+1)
	corpus = append(corpus, req.Text)
	for i := range profiles {
		corpus = append(corpus, profiles[i].Corpus)
	}
	model := vectorize.Fit(corpus)

	reqVector, err := model.Vector(req.Text)
	if err != nil {
		var verr *vectorize.VectorizationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		out.Diagnostics = append(out.Diagnostics, types.Diagnostic{
			Stage:   types.StageVectorize,
			Subject: "requirement",
			Message: verr.Error(),
		})
	}

	vectors := make([]map[string]float64, len(profiles))
	vectorErrs := make([]error, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i], vectorErrs[i] = model.Vector(profiles[i].Corpus)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]types.MatchResult, 0, len(profiles))
	for i := range profiles {
		if vectorErrs[i] != nil {
			out.Diagnostics = append(out.Diagnostics, types.Diagnostic{
				Stage:   types.StageVectorize,
				Subject: profiles[i].IdentityID,
				Message: vectorErrs[i].Error(),
			})
		}
		s, shared := score.Cosine(reqVector, vectors[i])
		if s < req.Filters.MinScore {
			continue
		}
		if shared == nil {
			shared = []string{}
		}
		results = append(results, types.MatchResult{
			ProfileID:     profiles[i].IdentityID,
			RequirementID: out.RequirementID,
			Score:         s,
			MatchedTerms:  shared,
			DisplayName:   profiles[i].DisplayName,
			Contacts:      profiles[i].Contacts,
			LastActiveAt:  profiles[i].LastActiveAt,
		})
	}

	rank.Order(results)
	out.Total = len(results)

	page, next, err := rank.Page(results, cursor, pageSize)
	if err != nil {
		return nil, err
	}
	out.Results = page
	out.NextCursor = next
	return out, nil
}

// filterProfiles applies the requirement's structured filters ahead of
// scoring.
func filterProfiles(profiles []types.Profile, filters types.RequirementFilters) []types.Profile {
	keyword := strings.ToLower(strings.TrimSpace(filters.Keyword))
	out := make([]types.Profile, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if len(filters.Sources) > 0 {
			found := false
			for _, src := range filters.Sources {
				if p.HasSource(src) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if keyword != "" {
			haystack := strings.ToLower(p.DisplayName + " " + p.Corpus)
			if !strings.Contains(haystack, keyword) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out
}
