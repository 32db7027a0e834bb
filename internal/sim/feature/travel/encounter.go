package travel

import (
	"context"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

// EncounterChance is max(0, base+modifier), scaled by the wartime factor when
// at war and capped at MaxChance.
func EncounterChance(base, modifier float64, atWar bool, t tuning.EncounterTuning) float64 {
	p := base + modifier
	if p < 0 {
		p = 0
	}
	if atWar {
		p *= t.WartimeFactor
	}
	if t.MaxChance > 0 && p > t.MaxChance {
		p = t.MaxChance
	}
	return p
}

// PickMonster draws uniformly from monsters within the level window, falling
// back to the whole regional pool when the window is empty.
func PickMonster(pool []model.Monster, level, danger int, t tuning.EncounterTuning, rng RNG) (*model.Monster, bool) {
	if len(pool) == 0 {
		return nil, false
	}
	lo, hi := level-t.LevelBelow, level+t.LevelAbove+danger
	var window []model.Monster
	for _, m := range pool {
		if m.Level >= lo && m.Level <= hi {
			window = append(window, m)
		}
	}
	if len(window) == 0 {
		window = pool
	}
	m := window[rng.IntN(len(window))]
	return &m, true
}

// RollEncounter is the pure encounter check for one arrival.
func RollEncounter(node model.LocationNode, c *model.Character, modifier float64, atWar bool,
	pool []model.Monster, t tuning.EncounterTuning, rng RNG) (*model.Monster, bool) {
	p := EncounterChance(node.BaseEncounterChance, modifier, atWar, t)
	if p <= 0 || rng.Float64() >= p {
		return nil, false
	}
	return PickMonster(pool, c.Level, node.DangerLevel, t, rng)
}

// CheckNodeEncounter rolls for a monster on node for character c. No eligible
// monster is a non-event, not an error.
func (s *Service) CheckNodeEncounter(ctx context.Context, node model.LocationNode, c *model.Character, atWar bool) (*model.Monster, bool, error) {
	return s.checkNodeEncounter(ctx, s.Store, node, c, atWar)
}

func (s *Service) checkNodeEncounter(ctx context.Context, st *store.Store, node model.LocationNode, c *model.Character, atWar bool) (*model.Monster, bool, error) {
	pool, err := st.ListMonstersInRegion(ctx, node.RegionID)
	if err != nil {
		return nil, false, err
	}
	mod := 0.0
	if s.Catalogs != nil {
		mod = s.Catalogs.EncounterModifier(c.Race)
	}
	m, ok := RollEncounter(node, c, mod, atWar, pool, s.Tuning.Encounters, s.rng())
	return m, ok, nil
}

// AtWar reports whether the kingdom takes part in any of the active wars.
func AtWar(kingdomID string, wars []model.War) bool {
	for _, w := range wars {
		if w.Active && w.Involves(kingdomID) {
			return true
		}
	}
	return false
}
