package store

import (
	"context"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveElection(ctx context.Context, e *model.Election) error {
	payload, err := encode(e)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "elections", 1, []string{"id", "phase", "payload"}, e.ID, string(e.Phase), payload)
}

func (s *Store) GetElection(ctx context.Context, id string) (*model.Election, error) {
	e, err := getRecord[model.Election](ctx, s, "SELECT payload FROM elections WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get election %s: %w", id, err)
	}
	return &e, nil
}

// ListOpenElections returns elections not yet COMPLETED.
func (s *Store) ListOpenElections(ctx context.Context) ([]model.Election, error) {
	return listRecords[model.Election](ctx, s, "SELECT payload FROM elections WHERE phase <> ? ORDER BY id", string(model.PhaseCompleted))
}

func (s *Store) SaveImpeachment(ctx context.Context, im *model.Impeachment) error {
	payload, err := encode(im)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "impeachments", 1, []string{"id", "status", "payload"}, im.ID, string(im.Status), payload)
}

func (s *Store) GetImpeachment(ctx context.Context, id string) (*model.Impeachment, error) {
	im, err := getRecord[model.Impeachment](ctx, s, "SELECT payload FROM impeachments WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get impeachment %s: %w", id, err)
	}
	return &im, nil
}

func (s *Store) ListActiveImpeachments(ctx context.Context) ([]model.Impeachment, error) {
	return listRecords[model.Impeachment](ctx, s, "SELECT payload FROM impeachments WHERE status = ? ORDER BY id", string(model.ImpeachmentActive))
}
