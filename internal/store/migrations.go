package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	business_id          TEXT PRIMARY KEY,
	checklist            TEXT NOT NULL DEFAULT '[]',
	total_count          INTEGER NOT NULL DEFAULT 0,
	needs_watering_count INTEGER NOT NULL DEFAULT 0,
	completed_count      INTEGER NOT NULL DEFAULT 0,
	fetched_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS search_history (
	id          TEXT PRIMARY KEY,
	term        TEXT NOT NULL,
	searched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	plant_id   TEXT NOT NULL,
	raw_code   TEXT NOT NULL,
	method     TEXT NOT NULL,
	scanned_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_history_at ON search_history(searched_at);
CREATE INDEX IF NOT EXISTS idx_scans_at ON scans(scanned_at);
CREATE INDEX IF NOT EXISTS idx_scans_plant ON scans(plant_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
