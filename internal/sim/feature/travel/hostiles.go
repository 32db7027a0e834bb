package travel

import (
	"context"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/model"
)

type Hostile struct {
	Character model.Character  `json:"character"`
	Order     model.DailyOrder `json:"order"`
}

// FilterHostiles keeps the stationed characters that will attack the traveler.
// Party members and same-kingdom characters never do. A GUARD only engages
// travelers from a kingdom its own kingdom is at war with; an AMBUSH engages
// anyone from another kingdom.
func FilterHostiles(orders []model.DailyOrder, stationed map[string]model.Character, traveler *model.Character,
	party []string, wars []model.War) []Hostile {
	inParty := map[string]bool{traveler.ID: true}
	for _, id := range party {
		inParty[id] = true
	}
	var out []Hostile
	for _, o := range orders {
		if inParty[o.CharacterID] {
			continue
		}
		c, ok := stationed[o.CharacterID]
		if !ok || c.HP <= 0 || c.NodeID != o.NodeID {
			continue
		}
		if c.KingdomID != "" && c.KingdomID == traveler.KingdomID {
			continue
		}
		switch o.Kind {
		case model.OrderGuard:
			if !opposed(c.KingdomID, traveler.KingdomID, wars) {
				continue
			}
		case model.OrderAmbush:
		default:
			continue
		}
		out = append(out, Hostile{Character: c, Order: o})
	}
	return out
}

func opposed(a, b string, wars []model.War) bool {
	for _, w := range wars {
		if w.Active && w.Opposes(a, b) {
			return true
		}
	}
	return false
}

// Hostiles returns characters stationed on nodeID today with a standing order
// that makes them attack traveler.
func (s *Service) Hostiles(ctx context.Context, nodeID string, traveler *model.Character, party []string, day time.Time) ([]Hostile, error) {
	wars, err := s.Store.ListActiveWars(ctx)
	if err != nil {
		return nil, err
	}
	return s.hostiles(ctx, s.Store, nodeID, traveler, party, day, wars)
}

func (s *Service) hostiles(ctx context.Context, st *store.Store, nodeID string, traveler *model.Character,
	party []string, day time.Time, wars []model.War) ([]Hostile, error) {
	orders, err := st.ListOrdersAtNode(ctx, nodeID, day.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	chars, err := st.ListCharactersAtNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	stationed := make(map[string]model.Character, len(chars))
	for _, c := range chars {
		stationed[c.ID] = c
	}
	return FilterHostiles(orders, stationed, traveler, party, wars), nil
}
