package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/talent-sourcer/internal/config"
	"github.com/jonathan/talent-sourcer/internal/logging"
	"github.com/jonathan/talent-sourcer/internal/pipeline"
	"github.com/jonathan/talent-sourcer/internal/types"
	"go.uber.org/zap"
)

// pipelineState is the on-disk form of the working set plus the last
// published snapshot, so consecutive CLI invocations behave like one
// long-running engine.
type pipelineState struct {
	Records  []types.SourceRecord `json:"records"`
	Snapshot *pipeline.Snapshot   `json:"snapshot,omitempty"`
}

func loadState(path string) (*pipelineState, error) {
	state := &pipelineState{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return state, nil
}

func saveState(path string, state *pipelineState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}

// newEngine builds an engine from a config file path and a state file,
// restoring the previous snapshot when one exists.
func newEngine(configPath, statePath string) (*pipeline.Engine, *pipelineState, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	state, err := loadState(statePath)
	if err != nil {
		return nil, nil, nil, err
	}

	engine := pipeline.New(cfg, logger)
	engine.Restore(state.Snapshot)
	engine.AddRecords(state.Records)
	return engine, state, logger, nil
}
