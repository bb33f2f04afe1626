package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-sourcer/internal/types"
)

func TestLoadState_MissingFileIsEmpty(t *testing.T) {
	state, err := loadState(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, state.Records)
	assert.Nil(t, state.Snapshot)
}

func TestLoadState_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadState(path)
	assert.Error(t, err)
}

func TestSaveAndLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	state := &pipelineState{
		Records: []types.SourceRecord{
			{
				Key:          types.RecordKey{Source: "github", ExternalID: "taro"},
				Name:         "taro",
				NameVariants: []string{"taro"},
				Handle:       "taro",
				Email:        types.Unknown,
				ORCID:        types.Unknown,
				Affiliation:  types.Unknown,
				Summary:      types.Unknown,
				Topics:       []string{},
				URLs:         []string{},
				FetchedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	require.NoError(t, saveState(path, state))

	got, err := loadState(path)
	require.NoError(t, err)
	assert.Equal(t, state.Records, got.Records)
}

func TestNewEngine_RestoresWorkingSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := &pipelineState{
		Records: []types.SourceRecord{
			{
				Key:       types.RecordKey{Source: "github", ExternalID: "taro"},
				Handle:    "taro",
				FetchedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	require.NoError(t, saveState(path, state))

	engine, _, _, err := newEngine("", path)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.RecordCount())
}
