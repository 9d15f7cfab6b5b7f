package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/greener/waterdesk/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveSnapshot replaces the cached checklist snapshot for a business.
// The cache is a single slot: each save overwrites the previous one.
func (s *SQLiteStore) SaveSnapshot(
	ctx context.Context,
	businessID string,
	snap *model.ChecklistSnapshot,
) error {
	checklist, err := json.Marshal(snap.Checklist)
	if err != nil {
		return fmt.Errorf("marshaling checklist: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (
			business_id, checklist, total_count,
			needs_watering_count, completed_count, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		businessID, string(checklist), snap.TotalCount,
		snap.NeedsWateringCount, snap.CompletedCount, snap.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", businessID, err)
	}

	return nil
}

// GetSnapshot returns the cached snapshot for a business, or (nil, nil)
// when none has been cached yet.
func (s *SQLiteStore) GetSnapshot(
	ctx context.Context,
	businessID string,
) (*model.ChecklistSnapshot, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT checklist, total_count, needs_watering_count, completed_count, fetched_at FROM snapshots WHERE business_id = ?",
		businessID,
	)

	var (
		checklist string
		snap      model.ChecklistSnapshot
		fetchedAt time.Time
	)
	err := row.Scan(
		&checklist, &snap.TotalCount, &snap.NeedsWateringCount,
		&snap.CompletedCount, &fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot for %s: %w", businessID, err)
	}

	snap.FetchedAt = fetchedAt
	if err := json.Unmarshal([]byte(checklist), &snap.Checklist); err != nil {
		return nil, fmt.Errorf("unmarshaling cached checklist: %w", err)
	}

	return &snap, nil
}
