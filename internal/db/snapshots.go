package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-sourcer/internal/pipeline"
	"github.com/jonathan/talent-sourcer/internal/types"
)

// SaveSnapshot persists a published snapshot with its identities and
// profiles in one transaction. Snapshot versions are immutable; saving
// an already-stored version is an error.
func (db *DB) SaveSnapshot(ctx context.Context, snap *pipeline.Snapshot) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	splits, err := json.Marshal(snap.Splits)
	if err != nil {
		return fmt.Errorf("failed to marshal splits: %w", err)
	}
	diags, err := json.Marshal(snap.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (version, published_at, splits, diagnostics)
		 VALUES ($1, $2, $3, $4)`,
		snap.Version, snap.PublishedAt, splits, diags,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %d: %w", snap.Version, err)
	}

	for _, identity := range snap.Identities {
		members, err := json.Marshal(identity.Members)
		if err != nil {
			return fmt.Errorf("failed to marshal members of %s: %w", identity.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO identities (snapshot_version, id, members, cohesion)
			 VALUES ($1, $2, $3, $4)`,
			snap.Version, identity.ID, members, identity.Cohesion,
		)
		if err != nil {
			return fmt.Errorf("failed to save identity %s: %w", identity.ID, err)
		}
	}

	for _, profile := range snap.Profiles {
		jsonBytes, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("failed to marshal profile %s: %w", profile.IdentityID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO profiles (snapshot_version, identity_id, profile)
			 VALUES ($1, $2, $3)`,
			snap.Version, profile.IdentityID, jsonBytes,
		)
		if err != nil {
			return fmt.Errorf("failed to save profile %s: %w", profile.IdentityID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot %d: %w", snap.Version, err)
	}
	return nil
}

// LatestVersion returns the highest stored snapshot version, or 0 when
// none has been published yet.
func (db *DB) LatestVersion(ctx context.Context) (int, error) {
	var version int
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM snapshots`,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest version: %w", err)
	}
	return version, nil
}

// LoadSnapshot retrieves one stored snapshot by version. Returns nil
// when the version does not exist.
func (db *DB) LoadSnapshot(ctx context.Context, version int) (*pipeline.Snapshot, error) {
	snap := &pipeline.Snapshot{Version: version}

	var splits, diags []byte
	err := db.pool.QueryRow(ctx,
		`SELECT published_at, splits, diagnostics FROM snapshots WHERE version = $1`,
		version,
	).Scan(&snap.PublishedAt, &splits, &diags)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %d: %w", version, err)
	}
	if err := json.Unmarshal(splits, &snap.Splits); err != nil {
		return nil, fmt.Errorf("failed to decode splits: %w", err)
	}
	if err := json.Unmarshal(diags, &snap.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics: %w", err)
	}

	snap.Identities, err = db.loadIdentities(ctx, version)
	if err != nil {
		return nil, err
	}
	snap.Profiles, err = db.loadProfiles(ctx, version)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (db *DB) loadIdentities(ctx context.Context, version int) ([]types.CandidateIdentity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, members, cohesion FROM identities WHERE snapshot_version = $1 ORDER BY id`,
		version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load identities: %w", err)
	}
	defer rows.Close()

	identities := []types.CandidateIdentity{}
	for rows.Next() {
		var identity types.CandidateIdentity
		var members []byte
		if err := rows.Scan(&identity.ID, &members, &identity.Cohesion); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		if err := json.Unmarshal(members, &identity.Members); err != nil {
			return nil, fmt.Errorf("failed to decode members of %s: %w", identity.ID, err)
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

func (db *DB) loadProfiles(ctx context.Context, version int) ([]types.Profile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT profile FROM profiles WHERE snapshot_version = $1 ORDER BY identity_id`,
		version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		var jsonBytes []byte
		if err := rows.Scan(&jsonBytes); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var profile types.Profile
		if err := json.Unmarshal(jsonBytes, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
