package store

import (
	"context"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveTown(ctx context.Context, t *model.Town) error {
	payload, err := encode(t)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "towns", 1, []string{"id", "payload"}, t.ID, payload)
}

func (s *Store) GetTown(ctx context.Context, id string) (*model.Town, error) {
	t, err := getRecord[model.Town](ctx, s, "SELECT payload FROM towns WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get town %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) ListTowns(ctx context.Context) ([]model.Town, error) {
	return listRecords[model.Town](ctx, s, "SELECT payload FROM towns ORDER BY id")
}

func (s *Store) SaveNode(ctx context.Context, n *model.LocationNode) error {
	payload, err := encode(n)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "location_nodes", 1, []string{"id", "region_id", "payload"}, n.ID, n.RegionID, payload)
}

func (s *Store) ListNodes(ctx context.Context) ([]model.LocationNode, error) {
	return listRecords[model.LocationNode](ctx, s, "SELECT payload FROM location_nodes ORDER BY id")
}

func (s *Store) SaveConnection(ctx context.Context, c model.NodeConnection) error {
	return s.upsert(ctx, "node_connections", 2, []string{"from_node_id", "to_node_id", "bidirectional"},
		c.FromNodeID, c.ToNodeID, boolInt(c.Bidirectional))
}

func (s *Store) ListConnections(ctx context.Context) ([]model.NodeConnection, error) {
	rows, err := s.query(ctx, "SELECT from_node_id, to_node_id, bidirectional FROM node_connections ORDER BY from_node_id, to_node_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.NodeConnection
	for rows.Next() {
		var c model.NodeConnection
		var bidi int
		if err := rows.Scan(&c.FromNodeID, &c.ToNodeID, &bidi); err != nil {
			return nil, err
		}
		c.Bidirectional = bidi != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SaveMonster(ctx context.Context, m *model.Monster) error {
	payload, err := encode(m)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "monsters", 1, []string{"id", "region_id", "payload"}, m.ID, m.RegionID, payload)
}

func (s *Store) ListMonstersInRegion(ctx context.Context, regionID string) ([]model.Monster, error) {
	return listRecords[model.Monster](ctx, s, "SELECT payload FROM monsters WHERE region_id = ? ORDER BY id", regionID)
}

func (s *Store) SaveTravelPlan(ctx context.Context, p *model.TravelPlan) error {
	payload, err := encode(p)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "travel_plans", 1, []string{"id", "status", "payload"}, p.ID, string(p.Status), payload)
}

func (s *Store) GetTravelPlan(ctx context.Context, id string) (*model.TravelPlan, error) {
	p, err := getRecord[model.TravelPlan](ctx, s, "SELECT payload FROM travel_plans WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get travel plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) ListTravelPlans(ctx context.Context, status model.TravelStatus) ([]model.TravelPlan, error) {
	return listRecords[model.TravelPlan](ctx, s, "SELECT payload FROM travel_plans WHERE status = ? ORDER BY id", string(status))
}

// SaveDailyOrder replaces the character's standing order.
func (s *Store) SaveDailyOrder(ctx context.Context, o *model.DailyOrder) error {
	payload, err := encode(o)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "daily_orders", 1, []string{"character_id", "node_id", "issued_on", "payload"},
		o.CharacterID, o.NodeID, o.IssuedOn, payload)
}

func (s *Store) ListOrdersAtNode(ctx context.Context, nodeID, issuedOn string) ([]model.DailyOrder, error) {
	return listRecords[model.DailyOrder](ctx, s,
		"SELECT payload FROM daily_orders WHERE node_id = ? AND issued_on = ? ORDER BY character_id", nodeID, issuedOn)
}

func (s *Store) SaveWar(ctx context.Context, w *model.War) error {
	payload, err := encode(w)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "wars", 1, []string{"id", "active", "payload"}, w.ID, boolInt(w.Active), payload)
}

func (s *Store) ListActiveWars(ctx context.Context) ([]model.War, error) {
	return listRecords[model.War](ctx, s, "SELECT payload FROM wars WHERE active = 1 ORDER BY id")
}
