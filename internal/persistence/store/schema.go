package store

import (
	"context"
	"database/sql"
)

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// initSchema only uses types and syntax shared by SQLite and Postgres.
func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tick_runs (
			id TEXT PRIMARY KEY,
			started_at BIGINT NOT NULL,
			finished_at BIGINT NOT NULL,
			steps INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tick_runs_started ON tick_runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS characters (
			id TEXT PRIMARY KEY,
			town_id TEXT NOT NULL,
			node_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_characters_node ON characters(node_id)`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			days_remaining INTEGER,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id)`,
		`CREATE TABLE IF NOT EXISTS market_listings (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			town_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_listings_item ON market_listings(item_id)`,
		`CREATE TABLE IF NOT EXISTS timed_actions (
			id TEXT PRIMARY KEY,
			character_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			completes_at BIGINT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_timed_actions_owner ON timed_actions(character_id, kind, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_timed_actions_status ON timed_actions(status, completes_at)`,
		`CREATE TABLE IF NOT EXISTS towns (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS location_nodes (
			id TEXT PRIMARY KEY,
			region_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS node_connections (
			from_node_id TEXT NOT NULL,
			to_node_id TEXT NOT NULL,
			bidirectional INTEGER NOT NULL,
			PRIMARY KEY (from_node_id, to_node_id)
		)`,
		`CREATE TABLE IF NOT EXISTS monsters (
			id TEXT PRIMARY KEY,
			region_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_monsters_region ON monsters(region_id)`,
		`CREATE TABLE IF NOT EXISTS travel_plans (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_orders (
			character_id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL,
			issued_on TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_orders_node ON daily_orders(node_id, issued_on)`,
		`CREATE TABLE IF NOT EXISTS wars (
			id TEXT PRIMARY KEY,
			active INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS buildings (
			id TEXT PRIMARY KEY,
			town_id TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS constructions (
			id TEXT PRIMARY KEY,
			building_id TEXT NOT NULL,
			status TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_constructions_status ON constructions(status)`,
		`CREATE TABLE IF NOT EXISTS elections (
			id TEXT PRIMARY KEY,
			phase TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS impeachments (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS npcs (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
