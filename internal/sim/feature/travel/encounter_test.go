package travel

import (
	"testing"

	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

type fixedRNG struct {
	f float64
	i int
}

func (r fixedRNG) Float64() float64 { return r.f }
func (r fixedRNG) IntN(n int) int {
	if r.i >= n {
		return n - 1
	}
	return r.i
}

func TestEncounterChance(t *testing.T) {
	et := tuning.Defaults().Encounters
	if got := EncounterChance(0.1, -0.3, false, et); got != 0 {
		t.Fatalf("negative chance should floor at 0, got %v", got)
	}
	if got := EncounterChance(0.4, 0, true, et); got != 0.5 {
		t.Fatalf("wartime should scale by 1.25, got %v", got)
	}
	if got := EncounterChance(0.9, 0, true, et); got != 1.0 {
		t.Fatalf("chance should cap at 1.0, got %v", got)
	}
}

func TestPickMonsterWindowAndFallback(t *testing.T) {
	et := tuning.Defaults().Encounters
	pool := []model.Monster{
		{ID: "rat", Level: 1},
		{ID: "wolf", Level: 6},
		{ID: "troll", Level: 20},
	}
	m, ok := PickMonster(pool, 5, 0, et, fixedRNG{})
	if !ok || m.ID != "wolf" {
		t.Fatalf("level 5 window [2,8] should only hold wolf, got %+v", m)
	}
	m, ok = PickMonster(pool, 5, 12, et, fixedRNG{i: 1})
	if !ok || m.ID != "troll" {
		t.Fatalf("danger widens the window to include troll, got %+v", m)
	}
	m, ok = PickMonster(pool[:1], 30, 0, et, fixedRNG{})
	if !ok || m.ID != "rat" {
		t.Fatalf("empty window should fall back to the region pool, got %+v", m)
	}
	if _, ok := PickMonster(nil, 5, 0, et, fixedRNG{}); ok {
		t.Fatalf("no monsters must be a non-event")
	}
}

func TestRollEncounterRespectsChance(t *testing.T) {
	et := tuning.Defaults().Encounters
	node := model.LocationNode{ID: "w1", BaseEncounterChance: 0.3}
	c := &model.Character{Level: 3}
	pool := []model.Monster{{ID: "rat", Level: 2}}

	if _, ok := RollEncounter(node, c, 0, false, pool, et, fixedRNG{f: 0.35}); ok {
		t.Fatalf("roll above chance should not hit")
	}
	if _, ok := RollEncounter(node, c, 0, true, pool, et, fixedRNG{f: 0.35}); !ok {
		t.Fatalf("wartime chance 0.375 should hit a 0.35 roll")
	}
	if _, ok := RollEncounter(node, c, -0.5, true, pool, et, fixedRNG{f: 0}); ok {
		t.Fatalf("floored chance must never hit")
	}
}

func TestFilterHostiles(t *testing.T) {
	traveler := &model.Character{ID: "t", KingdomID: "north"}
	wars := []model.War{{ID: "w", AttackerKingdomID: "north", DefenderKingdomID: "south", Active: true}}
	stationed := map[string]model.Character{
		"guard-south": {ID: "guard-south", KingdomID: "south", NodeID: "n", HP: 10},
		"guard-east":  {ID: "guard-east", KingdomID: "east", NodeID: "n", HP: 10},
		"ambush-east": {ID: "ambush-east", KingdomID: "east", NodeID: "n", HP: 10},
		"ambush-ally": {ID: "ambush-ally", KingdomID: "north", NodeID: "n", HP: 10},
		"friend":      {ID: "friend", KingdomID: "south", NodeID: "n", HP: 10},
		"downed":      {ID: "downed", KingdomID: "south", NodeID: "n", HP: 0},
	}
	orders := []model.DailyOrder{
		{CharacterID: "guard-south", NodeID: "n", Kind: model.OrderGuard},
		{CharacterID: "guard-east", NodeID: "n", Kind: model.OrderGuard},
		{CharacterID: "ambush-east", NodeID: "n", Kind: model.OrderAmbush},
		{CharacterID: "ambush-ally", NodeID: "n", Kind: model.OrderAmbush},
		{CharacterID: "friend", NodeID: "n", Kind: model.OrderAmbush},
		{CharacterID: "downed", NodeID: "n", Kind: model.OrderAmbush},
	}

	got := FilterHostiles(orders, stationed, traveler, []string{"friend"}, wars)
	ids := map[string]bool{}
	for _, h := range got {
		ids[h.Character.ID] = true
	}
	if len(got) != 2 || !ids["guard-south"] || !ids["ambush-east"] {
		t.Fatalf("expected guard-south and ambush-east, got %v", ids)
	}
}
