package store

import (
	"context"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveCharacter(ctx context.Context, c *model.Character) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("save character: missing id")
	}
	payload, err := encode(c)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "characters", 1, []string{"id", "town_id", "node_id", "payload"},
		c.ID, c.TownID, c.NodeID, payload)
}

func (s *Store) GetCharacter(ctx context.Context, id string) (*model.Character, error) {
	c, err := getRecord[model.Character](ctx, s, "SELECT payload FROM characters WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get character %s: %w", id, err)
	}
	return &c, nil
}

// ListCharacters returns every character ordered by id.
func (s *Store) ListCharacters(ctx context.Context) ([]model.Character, error) {
	return listRecords[model.Character](ctx, s, "SELECT payload FROM characters ORDER BY id")
}

func (s *Store) ListCharactersAtNode(ctx context.Context, nodeID string) ([]model.Character, error) {
	return listRecords[model.Character](ctx, s, "SELECT payload FROM characters WHERE node_id = ? ORDER BY id", nodeID)
}
