package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// UpsertRecords stores normalized records, keeping the freshest version
// per key. A record fetched earlier than the stored one is skipped, so
// re-delivering an old batch never shadows newer data.
func (db *DB) UpsertRecords(ctx context.Context, records []types.SourceRecord) error {
	for _, rec := range records {
		jsonBytes, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", rec.Key, err)
		}

		_, err = db.pool.Exec(ctx,
			`INSERT INTO source_records (source, external_id, fetched_at, record)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (source, external_id) DO UPDATE
			 SET fetched_at = $3, record = $4
			 WHERE source_records.fetched_at <= $3`,
			rec.Key.Source, rec.Key.ExternalID, rec.FetchedAt, jsonBytes,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.Key, err)
		}
	}
	return nil
}

// LoadRecords retrieves every stored record, used to rebuild the
// in-memory working set on startup.
func (db *DB) LoadRecords(ctx context.Context) ([]types.SourceRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT record FROM source_records ORDER BY source, external_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer rows.Close()

	var records []types.SourceRecord
	for rows.Next() {
		var jsonBytes []byte
		if err := rows.Scan(&jsonBytes); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec types.SourceRecord
		if err := json.Unmarshal(jsonBytes, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetRecord retrieves one record by key. Returns nil when absent.
func (db *DB) GetRecord(ctx context.Context, key types.RecordKey) (*types.SourceRecord, error) {
	var jsonBytes []byte
	err := db.pool.QueryRow(ctx,
		`SELECT record FROM source_records WHERE source = $1 AND external_id = $2`,
		key.Source, key.ExternalID,
	).Scan(&jsonBytes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}

	var rec types.SourceRecord
	if err := json.Unmarshal(jsonBytes, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", key, err)
	}
	return &rec, nil
}
