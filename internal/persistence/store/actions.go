package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"realmtick.io/internal/sim/model"
)

const actionCols = "status, payload"

func (s *Store) SaveAction(ctx context.Context, a *model.TimedAction) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("save action: missing id")
	}
	payload, err := encode(a)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "timed_actions", 1,
		[]string{"id", "character_id", "kind", "status", "started_at", "completes_at", "payload"},
		a.ID, a.CharacterID, string(a.Kind), string(a.Status), unixNano(a.StartedAt), unixNano(a.CompletesAt), payload)
}

func scanAction(sc interface{ Scan(...any) error }) (*model.TimedAction, error) {
	var status, payload string
	if err := sc.Scan(&status, &payload); err != nil {
		return nil, err
	}
	var a model.TimedAction
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	// Bulk status flips only touch the column.
	a.Status = model.ActionStatus(status)
	return &a, nil
}

func (s *Store) GetAction(ctx context.Context, id string) (*model.TimedAction, error) {
	a, err := scanAction(s.queryRow(ctx, "SELECT "+actionCols+" FROM timed_actions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get action %s: %w", id, ErrNotFound)
	}
	return a, err
}

// LatestAction returns the most recently started action of kind for a character.
func (s *Store) LatestAction(ctx context.Context, characterID string, kind model.ActionKind) (*model.TimedAction, error) {
	a, err := scanAction(s.queryRow(ctx,
		"SELECT "+actionCols+" FROM timed_actions WHERE character_id = ? AND kind = ? ORDER BY started_at DESC, id DESC LIMIT 1",
		characterID, string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Store) ListActionsByStatus(ctx context.Context, status model.ActionStatus) ([]model.TimedAction, error) {
	rows, err := s.query(ctx, "SELECT "+actionCols+" FROM timed_actions WHERE status = ? ORDER BY completes_at, id", string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TimedAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CompleteElapsedActions flips every IN_PROGRESS action due at or before now.
func (s *Store) CompleteElapsedActions(ctx context.Context, now time.Time) (int, error) {
	res, err := s.exec(ctx,
		"UPDATE timed_actions SET status = ? WHERE status = ? AND completes_at <= ?",
		string(model.StatusCompleted), string(model.StatusInProgress), unixNano(now))
	if err != nil {
		return 0, fmt.Errorf("complete actions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// MarkCollected flips a COMPLETED action to COLLECTED. It reports false when
// the row was not COMPLETED at write time.
func (s *Store) MarkCollected(ctx context.Context, id string) (bool, error) {
	res, err := s.exec(ctx,
		"UPDATE timed_actions SET status = ? WHERE id = ? AND status = ?",
		string(model.StatusCollected), id, string(model.StatusCompleted))
	if err != nil {
		return false, fmt.Errorf("mark collected: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) DeleteActionsByStatus(ctx context.Context, status model.ActionStatus) (int, error) {
	res, err := s.exec(ctx, "DELETE FROM timed_actions WHERE status = ?", string(status))
	if err != nil {
		return 0, fmt.Errorf("delete actions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
