package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// searchHistoryCap bounds how many search terms are retained.
const searchHistoryCap = 50

// GetSetting returns the value for a settings key, or "" when unset.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM settings WHERE key = ?", key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a settings key-value pair, overwriting any
// previous value.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// AddSearchTerm records a search term and trims the history to its cap.
func (s *SQLiteStore) AddSearchTerm(ctx context.Context, term string) error {
	if term == "" {
		return nil
	}

	// Re-searching a term moves it to the top rather than duplicating.
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM search_history WHERE term = ?", term,
	)
	if err != nil {
		return fmt.Errorf("deduplicating search term: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, term, searched_at)
		VALUES (?, ?, ?)`,
		uuid.New().String(), term, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("adding search term: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM search_history WHERE id NOT IN (
			SELECT id FROM search_history
			ORDER BY searched_at DESC LIMIT ?
		)`,
		searchHistoryCap,
	)
	if err != nil {
		return fmt.Errorf("trimming search history: %w", err)
	}

	return nil
}

// GetSearchHistory returns the most recent search terms, newest first.
func (s *SQLiteStore) GetSearchHistory(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = searchHistoryCap
	}

	var terms []string
	err := s.db.SelectContext(ctx, &terms,
		"SELECT term FROM search_history ORDER BY searched_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	return terms, nil
}

// LogScan records an accepted barcode scan.
func (s *SQLiteStore) LogScan(ctx context.Context, rec ScanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (id, plant_id, raw_code, method, scanned_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.PlantID, rec.RawCode, rec.Method, rec.ScannedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("logging scan for plant %s: %w", rec.PlantID, err)
	}
	return nil
}

// GetRecentScans returns the latest scans, newest first.
func (s *SQLiteStore) GetRecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var scans []ScanRecord
	err := s.db.SelectContext(ctx, &scans,
		"SELECT id, plant_id, raw_code, method, scanned_at FROM scans ORDER BY scanned_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent scans: %w", err)
	}
	return scans, nil
}
