package store

import (
	"context"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveBuilding(ctx context.Context, b *model.Building) error {
	payload, err := encode(b)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "buildings", 1, []string{"id", "town_id", "payload"}, b.ID, b.TownID, payload)
}

func (s *Store) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	b, err := getRecord[model.Building](ctx, s, "SELECT payload FROM buildings WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get building %s: %w", id, err)
	}
	return &b, nil
}

func (s *Store) ListBuildings(ctx context.Context) ([]model.Building, error) {
	return listRecords[model.Building](ctx, s, "SELECT payload FROM buildings ORDER BY id")
}

func (s *Store) SaveConstruction(ctx context.Context, c *model.Construction) error {
	payload, err := encode(c)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "constructions", 1, []string{"id", "building_id", "status", "payload"},
		c.ID, c.BuildingID, string(c.Status), payload)
}

func (s *Store) GetConstruction(ctx context.Context, id string) (*model.Construction, error) {
	c, err := getRecord[model.Construction](ctx, s, "SELECT payload FROM constructions WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get construction %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) ListConstructionsByStatus(ctx context.Context, status model.ConstructionStatus) ([]model.Construction, error) {
	return listRecords[model.Construction](ctx, s, "SELECT payload FROM constructions WHERE status = ? ORDER BY id", string(status))
}
