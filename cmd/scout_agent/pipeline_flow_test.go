package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCmd builds a command carrying a context, as Execute() would.
func testCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

const flowBatch = `[
	{"source": "github", "external_id": "taro", "fetched_at": "2026-08-01T00:00:00Z",
	 "payload": {"login": "taro", "name": "Taro Yamada", "bio": "Python NLP engineer"}},
	{"source": "qiita", "external_id": "taro", "fetched_at": "2026-08-02T00:00:00Z",
	 "payload": {"id": "taro", "name": "山田太郎", "description": "自然言語処理とPython"}}
]`

// TestIngestResolveMatchFlow drives the command funcs end to end over a
// temp state file, the way consecutive CLI invocations would.
func TestIngestResolveMatchFlow(t *testing.T) {
	dir := t.TempDir()
	batchPath := filepath.Join(dir, "batch.json")
	statePath := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(batchPath, []byte(flowBatch), 0o644))

	ingestInputs = []string{batchPath}
	ingestConfig = ""
	ingestState = statePath
	require.NoError(t, runIngest(nil, nil))

	state, err := loadState(statePath)
	require.NoError(t, err)
	assert.Len(t, state.Records, 2)
	assert.Nil(t, state.Snapshot)

	resolveConfig = ""
	resolveState = statePath
	resolveVerbose = false
	require.NoError(t, runResolve(testCmd(), nil))

	state, err = loadState(statePath)
	require.NoError(t, err)
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, 1, state.Snapshot.Version)
	assert.Len(t, state.Snapshot.Profiles, 1, "the github and qiita fragments describe one person")

	matchConfig = ""
	matchState = statePath
	matchText = "Python NLP engineer"
	matchSources = nil
	matchKeyword = ""
	matchMinScore = 0
	matchCursor = ""
	matchPageSize = 0
	matchJSON = true
	require.NoError(t, runMatch(testCmd(), nil))

	profilesConfig = ""
	profilesState = statePath
	profilesID = state.Snapshot.Profiles[0].IdentityID
	profilesJSON = true
	require.NoError(t, runProfiles(nil, nil))
}

func TestResolveRequiresRecords(t *testing.T) {
	resolveConfig = ""
	resolveState = filepath.Join(t.TempDir(), "state.json")
	require.Error(t, runResolve(testCmd(), nil))
}

func TestMatchRequiresSnapshot(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	batchPath := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(batchPath, []byte(flowBatch), 0o644))

	ingestInputs = []string{batchPath}
	ingestConfig = ""
	ingestState = statePath
	require.NoError(t, runIngest(nil, nil))

	matchConfig = ""
	matchState = statePath
	matchText = "Python"
	err := runMatch(testCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no published snapshot")
}
