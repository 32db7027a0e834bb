package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// upsert writes one row keyed by the first keyCols columns.
func (s *Store) upsert(ctx context.Context, table string, keyCols int, cols []string, vals ...any) error {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = "?"
	}
	var set []string
	for _, c := range cols[keyCols:] {
		set = append(set, c+"=excluded."+c)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(ph, ", "),
		strings.Join(cols[:keyCols], ", "),
		strings.Join(set, ", "),
	)
	if _, err := s.exec(ctx, q, vals...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, id string) (bool, error) {
	res, err := s.exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// getRecord scans a single payload column into T.
func getRecord[T any](ctx context.Context, s *Store, query string, args ...any) (T, error) {
	var out T
	var payload string
	if err := s.queryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, ErrNotFound
		}
		return out, err
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// listRecords scans a payload column from every row into []T.
func listRecords[T any](ctx context.Context, s *Store, query string, args ...any) ([]T, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
