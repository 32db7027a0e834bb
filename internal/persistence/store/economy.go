package store

import (
	"context"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveResource(ctx context.Context, r *model.Resource) error {
	payload, err := encode(r)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "resources", 1, []string{"id", "node_id", "payload"}, r.ID, r.NodeID, payload)
}

func (s *Store) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	r, err := getRecord[model.Resource](ctx, s, "SELECT payload FROM resources WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get resource %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) ListResources(ctx context.Context) ([]model.Resource, error) {
	return listRecords[model.Resource](ctx, s, "SELECT payload FROM resources ORDER BY id")
}

func (s *Store) SaveLoan(ctx context.Context, l *model.Loan) error {
	payload, err := encode(l)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "loans", 1, []string{"id", "status", "payload"}, l.ID, string(l.Status), payload)
}

func (s *Store) GetLoan(ctx context.Context, id string) (*model.Loan, error) {
	l, err := getRecord[model.Loan](ctx, s, "SELECT payload FROM loans WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get loan %s: %w", id, err)
	}
	return &l, nil
}

func (s *Store) ListLoans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	return listRecords[model.Loan](ctx, s, "SELECT payload FROM loans WHERE status = ? ORDER BY id", string(status))
}

func (s *Store) SaveNPC(ctx context.Context, n *model.NPC) error {
	payload, err := encode(n)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "npcs", 1, []string{"id", "payload"}, n.ID, payload)
}

func (s *Store) ListNPCs(ctx context.Context) ([]model.NPC, error) {
	return listRecords[model.NPC](ctx, s, "SELECT payload FROM npcs ORDER BY id")
}
