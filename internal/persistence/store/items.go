package store

import (
	"context"
	"database/sql"
	"fmt"

	"realmtick.io/internal/sim/model"
)

func (s *Store) SaveItem(ctx context.Context, it *model.Item) error {
	if it == nil || it.ID == "" {
		return fmt.Errorf("save item: missing id")
	}
	payload, err := encode(it)
	if err != nil {
		return err
	}
	var days sql.NullInt64
	if it.DaysRemaining != nil {
		days = sql.NullInt64{Int64: int64(*it.DaysRemaining), Valid: true}
	}
	return s.upsert(ctx, "items", 1, []string{"id", "owner_id", "days_remaining", "payload"},
		it.ID, it.OwnerID, days, payload)
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	it, err := getRecord[model.Item](ctx, s, "SELECT payload FROM items WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return &it, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "items", id)
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return listRecords[model.Item](ctx, s, "SELECT payload FROM items WHERE owner_id = ? ORDER BY id", ownerID)
}

// ListPerishableItems returns items with a days_remaining counter.
func (s *Store) ListPerishableItems(ctx context.Context) ([]model.Item, error) {
	return listRecords[model.Item](ctx, s, "SELECT payload FROM items WHERE days_remaining IS NOT NULL ORDER BY id")
}

func (s *Store) SaveListing(ctx context.Context, l *model.MarketListing) error {
	if l == nil || l.ID == "" {
		return fmt.Errorf("save listing: missing id")
	}
	payload, err := encode(l)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "market_listings", 1, []string{"id", "item_id", "town_id", "payload"},
		l.ID, l.ItemID, l.TownID, payload)
}

func (s *Store) ListListingsForItem(ctx context.Context, itemID string) ([]model.MarketListing, error) {
	return listRecords[model.MarketListing](ctx, s, "SELECT payload FROM market_listings WHERE item_id = ? ORDER BY id", itemID)
}

// DeleteListingsForItem removes every listing of itemID and reports how many went.
func (s *Store) DeleteListingsForItem(ctx context.Context, itemID string) (int, error) {
	res, err := s.exec(ctx, "DELETE FROM market_listings WHERE item_id = ?", itemID)
	if err != nil {
		return 0, fmt.Errorf("delete listings: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
