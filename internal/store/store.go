package store

import (
	"context"
	"time"

	"github.com/greener/waterdesk/internal/model"
)

// Well-known settings keys. These mirror what the companion mobile app
// keeps in its device key-value store.
const (
	SettingBusinessID  = "businessId"
	SettingUserEmail   = "userEmail"
	SettingUserType    = "userType"
	SettingAutoRefresh = "autoRefresh"
)

// ScanRecord is one accepted barcode scan.
type ScanRecord struct {
	ID        string    `db:"id"`
	PlantID   string    `db:"plant_id"`
	RawCode   string    `db:"raw_code"`
	Method    string    `db:"method"`
	ScannedAt time.Time `db:"scanned_at"`
}

// Store defines the local persistence interface: the cached checklist
// snapshot, device settings, search history, and the scan log.
type Store interface {
	// === Checklist snapshot cache ===

	// SaveSnapshot replaces the cached snapshot for a business.
	SaveSnapshot(ctx context.Context, businessID string, snap *model.ChecklistSnapshot) error

	// GetSnapshot returns the cached snapshot, or (nil, nil) when
	// none is cached. Absence is not an error.
	GetSnapshot(ctx context.Context, businessID string) (*model.ChecklistSnapshot, error)

	// === Device settings ===

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// === Search history ===

	AddSearchTerm(ctx context.Context, term string) error
	GetSearchHistory(ctx context.Context, limit int) ([]string, error)

	// === Scan log ===

	LogScan(ctx context.Context, rec ScanRecord) error
	GetRecentScans(ctx context.Context, limit int) ([]ScanRecord, error)
}
