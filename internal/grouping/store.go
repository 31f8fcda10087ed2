// Package grouping maintains the durable declaration-name grouping cache
// and its LLM-backed enricher. Grouping maps free-text declaration names
// ("Hurricane Ian", "Severe Storms And Flooding") onto canonical event
// labels for rollups.
//
// The cache is content-addressed: each entry stores the hash of the source
// text that produced it, and an upsert only rewrites an entry when the
// stored hash differs from the freshly computed one. Unchanged rows are
// left untouched, so repeated warm runs are cheap and interrupted runs can
// resume.
package grouping

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Schema creates the grouping cache table.
const Schema = `
CREATE TABLE IF NOT EXISTS name_grouping_cache (
	record_id TEXT PRIMARY KEY,
	source_text_hash TEXT NOT NULL,
	group_label TEXT NOT NULL,
	theme_label TEXT,
	confidence REAL NOT NULL DEFAULT 0,
	model_id TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Entry is one cached grouping result, keyed by the stable record id.
type Entry struct {
	RecordID   string    `json:"record_id"`
	SourceHash string    `json:"source_text_hash"`
	GroupLabel string    `json:"group_label"`
	ThemeLabel string    `json:"theme_label,omitempty"`
	Confidence float64   `json:"confidence"`
	ModelID    string    `json:"model_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HashSource computes the content hash for a record's grouping inputs:
// sha256 of "incident_type|declaration_name".
func HashSource(incidentType, declarationName string) string {
	sum := sha256.Sum256([]byte(incidentType + "|" + declarationName))
	return hex.EncodeToString(sum[:])
}

// Store is the sqlite-backed durable cache.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the cache database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grouping cache: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure grouping schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing handle.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to ensure grouping schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the cached entry for a record id, if present.
func (s *Store) Get(ctx context.Context, recordID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT record_id, source_text_hash, group_label, COALESCE(theme_label, ''),
       confidence, COALESCE(model_id, ''), created_at, updated_at
FROM name_grouping_cache WHERE record_id = :id`, sql.Named("id", recordID))

	var e Entry
	var created, updated string
	err := row.Scan(&e.RecordID, &e.SourceHash, &e.GroupLabel, &e.ThemeLabel,
		&e.Confidence, &e.ModelID, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read grouping cache: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &e, nil
}

// Upsert writes the entry with content-addressed invalidation: insert when
// absent, update only when the stored source hash differs, otherwise leave
// the row untouched. Reports whether the row was written.
func (s *Store) Upsert(ctx context.Context, e Entry) (bool, error) {
	existing, err := s.Get(ctx, e.RecordID)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	if existing == nil {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO name_grouping_cache
	(record_id, source_text_hash, group_label, theme_label, confidence, model_id, created_at, updated_at)
VALUES (:id, :hash, :label, :theme, :conf, :model, :now, :now)`,
			sql.Named("id", e.RecordID),
			sql.Named("hash", e.SourceHash),
			sql.Named("label", e.GroupLabel),
			sql.Named("theme", e.ThemeLabel),
			sql.Named("conf", e.Confidence),
			sql.Named("model", e.ModelID),
			sql.Named("now", now),
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert grouping entry: %w", err)
		}
		return true, nil
	}

	if existing.SourceHash == e.SourceHash {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
UPDATE name_grouping_cache
SET source_text_hash = :hash, group_label = :label, theme_label = :theme,
    confidence = :conf, model_id = :model, updated_at = :now
WHERE record_id = :id`,
		sql.Named("hash", e.SourceHash),
		sql.Named("label", e.GroupLabel),
		sql.Named("theme", e.ThemeLabel),
		sql.Named("conf", e.Confidence),
		sql.Named("model", e.ModelID),
		sql.Named("now", now),
		sql.Named("id", e.RecordID),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update grouping entry: %w", err)
	}
	return true, nil
}

// GetFresh returns the entry only when its stored hash matches the given
// content hash; a stale entry is treated as a miss.
func (s *Store) GetFresh(ctx context.Context, recordID, sourceHash string) (*Entry, error) {
	e, err := s.Get(ctx, recordID)
	if err != nil || e == nil {
		return nil, err
	}
	if e.SourceHash != sourceHash {
		return nil, nil
	}
	return e, nil
}
