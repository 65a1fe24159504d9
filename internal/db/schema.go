package db

import (
	"fmt"
)

// sqliteSchema is the full SQLite schema.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    full_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
    department    TEXT,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    avatar_url    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id              TEXT PRIMARY KEY,
    item_name       TEXT NOT NULL,
    category        TEXT,
    department      TEXT,
    location        TEXT,
    unit            TEXT NOT NULL DEFAULT 'pcs',
    description     TEXT,
    unit_price      TEXT NOT NULL DEFAULT '0',
    min_stock_level INTEGER NOT NULL DEFAULT 5,
    quantity        INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
    condition       TEXT NOT NULL DEFAULT 'good',
    status          TEXT NOT NULL DEFAULT 'available',
    assigned_to     TEXT REFERENCES users(id) ON DELETE SET NULL,
    image_url       TEXT,
    brand           TEXT,
    type            TEXT,
    supplier        TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_sequences (
    prefix     TEXT PRIMARY KEY,
    last_value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id            TEXT PRIMARY KEY,
    item_id       TEXT NOT NULL,
    user_id       TEXT REFERENCES users(id) ON DELETE SET NULL,
    movement_type TEXT NOT NULL CHECK (movement_type IN ('in', 'out', 'adjustment')),
    display_type  TEXT,
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    reason        TEXT,
    from_location TEXT,
    to_location   TEXT,
    assigned_to   TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requests (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    item_id     TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    reason      TEXT,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'fulfilled')),
    admin_notes TEXT,
    department  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS blobs (
    bucket       TEXT NOT NULL,
    path         TEXT NOT NULL,
    content_type TEXT NOT NULL,
    data         BLOB NOT NULL,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (bucket, path)
);
`

// postgresSchema mirrors sqliteSchema for Postgres.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    full_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
    department    TEXT,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    avatar_url    TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id              TEXT PRIMARY KEY,
    item_name       TEXT NOT NULL,
    category        TEXT,
    department      TEXT,
    location        TEXT,
    unit            TEXT NOT NULL DEFAULT 'pcs',
    description     TEXT,
    unit_price      NUMERIC(12, 2) NOT NULL DEFAULT 0,
    min_stock_level INTEGER NOT NULL DEFAULT 5,
    quantity        INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
    condition       TEXT NOT NULL DEFAULT 'good',
    status          TEXT NOT NULL DEFAULT 'available',
    assigned_to     TEXT REFERENCES users(id) ON DELETE SET NULL,
    image_url       TEXT,
    brand           TEXT,
    type            TEXT,
    supplier        TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_sequences (
    prefix     TEXT PRIMARY KEY,
    last_value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id            TEXT PRIMARY KEY,
    item_id       TEXT NOT NULL,
    user_id       TEXT REFERENCES users(id) ON DELETE SET NULL,
    movement_type TEXT NOT NULL CHECK (movement_type IN ('in', 'out', 'adjustment')),
    display_type  TEXT,
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    reason        TEXT,
    from_location TEXT,
    to_location   TEXT,
    assigned_to   TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requests (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    item_id     TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    reason      TEXT,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'fulfilled')),
    admin_notes TEXT,
    department  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS blobs (
    bucket       TEXT NOT NULL,
    path         TEXT NOT NULL,
    content_type TEXT NOT NULL,
    data         BYTEA NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (bucket, path)
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid for both drivers. Append new
// migrations at the end.
var migrations = []string{
	// Migration 1: movement log is read newest-first.
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_created_at ON stock_movements(created_at)`,
	// Migration 2: per-item history lookups.
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_item ON stock_movements(item_id)`,
	// Migration 3: "my requests" listings.
	`CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id)`,
	// Migration 4: assigned-items lookups.
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_assigned ON inventory_items(assigned_to)`,
}

// EnsureSchema creates all tables and runs migrations. It is idempotent.
func EnsureSchema(d *DB) error {
	schema := sqliteSchema
	if d.Driver == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := d.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
