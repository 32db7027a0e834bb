package sustenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
)

type SpoilageReport struct {
	Decremented int `json:"decremented"`
	Destroyed   int `json:"destroyed"`

	// ByTown counts destroyed items by the owner's current settlement ("" = in the wild or unowned).
	ByTown   map[string]int `json:"by_town,omitempty"`
	Listings int            `json:"listings_removed"`
}

// ProcessSpoilage ages every perishable item by one day. Items reaching zero
// are removed together with their market listings in the same transaction.
func (s *Service) ProcessSpoilage(ctx context.Context, now time.Time) (SpoilageReport, error) {
	rep := SpoilageReport{ByTown: map[string]int{}}
	err := s.Store.InTx(ctx, func(tx *store.Store) error {
		items, err := tx.ListPerishableItems(ctx)
		if err != nil {
			return fmt.Errorf("list perishables: %w", err)
		}
		townOf := map[string]string{}
		for _, it := range items {
			left := *it.DaysRemaining - 1
			if left > 0 {
				it.DaysRemaining = &left
				if err := tx.SaveItem(ctx, &it); err != nil {
					return err
				}
				rep.Decremented++
				continue
			}

			if _, err := tx.DeleteItem(ctx, it.ID); err != nil {
				return err
			}
			n, err := tx.DeleteListingsForItem(ctx, it.ID)
			if err != nil {
				return err
			}
			rep.Listings += n
			rep.Destroyed++

			town, ok := townOf[it.OwnerID]
			if !ok {
				c, err := tx.GetCharacter(ctx, it.OwnerID)
				switch {
				case err == nil:
					town = c.TownID
				case !errors.Is(err, store.ErrNotFound):
					return err
				}
				townOf[it.OwnerID] = town
			}
			rep.ByTown[town]++
		}
		return nil
	})
	if err != nil {
		return SpoilageReport{}, err
	}
	if rep.Destroyed > 0 {
		s.emitter().Emit(events.ItemsSpoiled, rep)
	}
	s.logger().Printf("spoilage at=%s decremented=%d destroyed=%d listings=%d",
		now.UTC().Format(time.DateOnly), rep.Decremented, rep.Destroyed, rep.Listings)
	return rep, nil
}
