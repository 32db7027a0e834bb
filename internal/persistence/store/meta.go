package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	MetaLastTickDate      = "last_tick_date"
	MetaLastTickSuccessAt = "last_tick_success_at"
	MetaSchemaVersion     = "schema_version"
)

func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.queryRow(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	_, err := s.exec(ctx, "DELETE FROM meta WHERE key = ?", key)
	return err
}

// ClaimTickDate records date (YYYY-MM-DD) as the last tick date if it is later
// than the stored one. Exactly one caller per date gets true.
func (s *Store) ClaimTickDate(ctx context.Context, date string) (bool, error) {
	res, err := s.exec(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
		WHERE meta.value < excluded.value`,
		MetaLastTickDate, date)
	if err != nil {
		return false, fmt.Errorf("claim tick date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) SetLastTickSuccess(ctx context.Context, at time.Time) error {
	return s.SetMeta(ctx, MetaLastTickSuccessAt, strconv.FormatInt(at.UTC().UnixNano(), 10))
}

func (s *Store) LastTickSuccess(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := s.GetMeta(ctx, MetaLastTickSuccessAt)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", MetaLastTickSuccessAt, err)
	}
	return time.Unix(0, n).UTC(), true, nil
}

// UpsertCatalog stores the canonical catalog/tuning document currently applied.
func (s *Store) UpsertCatalog(ctx context.Context, name, digest string, payload []byte, now time.Time) error {
	if name == "" || digest == "" || len(payload) == 0 {
		return nil
	}
	return s.upsert(ctx, "catalogs", 1, []string{"name", "digest", "payload", "updated_at"},
		name, digest, string(payload), unixNano(now))
}

func (s *Store) CatalogDigest(ctx context.Context, name string) (string, error) {
	var d string
	err := s.queryRow(ctx, "SELECT digest FROM catalogs WHERE name = ?", name).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return d, err
}

type TickRunRow struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Steps      int
	Failed     int
	Payload    []byte
}

func (s *Store) RecordTickRun(ctx context.Context, r TickRunRow) error {
	return s.upsert(ctx, "tick_runs", 1, []string{"id", "started_at", "finished_at", "steps", "failed", "payload"},
		r.ID, unixNano(r.StartedAt), unixNano(r.FinishedAt), r.Steps, r.Failed, string(r.Payload))
}

// RecentTickRuns returns up to limit runs, newest first.
func (s *Store) RecentTickRuns(ctx context.Context, limit int) ([]TickRunRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.query(ctx,
		"SELECT id, started_at, finished_at, steps, failed, payload FROM tick_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TickRunRow
	for rows.Next() {
		var r TickRunRow
		var started, finished int64
		var payload string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Steps, &r.Failed, &payload); err != nil {
			return nil, err
		}
		r.StartedAt, r.FinishedAt, r.Payload = fromUnixNano(started), fromUnixNano(finished), []byte(payload)
		out = append(out, r)
	}
	return out, rows.Err()
}
