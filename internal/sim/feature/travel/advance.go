package travel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/feature/sustenance"
	"realmtick.io/internal/sim/formula"
	"realmtick.io/internal/sim/model"
)

type AdvanceReport struct {
	Plans      int `json:"plans"`
	Steps      int `json:"steps"`
	Arrived    int `json:"arrived"`
	Halted     int `json:"halted"`
	Encounters int `json:"encounters"`
	PvP        int `json:"pvp"`
	Failed     int `json:"failed"`
}

type planOutcome struct {
	steps     int
	arrived   bool
	halted    bool
	encounter bool
	pvp       bool
	notes     []note
}

type note struct {
	name    string
	payload any
}

// Advance moves every ACTIVE travel plan toward its destination. A party moves
// at the pace of its slowest member and may only skip when every member can.
// Movement stops for the day on the first encounter.
func (s *Service) Advance(ctx context.Context, now time.Time) (AdvanceReport, error) {
	var rep AdvanceReport
	g, err := s.index().Load(ctx)
	if err != nil {
		return rep, err
	}
	plans, err := s.Store.ListTravelPlans(ctx, model.TravelActive)
	if err != nil {
		return rep, fmt.Errorf("list travel plans: %w", err)
	}
	wars, err := s.Store.ListActiveWars(ctx)
	if err != nil {
		return rep, fmt.Errorf("list wars: %w", err)
	}

	var firstErr error
	for _, p := range plans {
		rep.Plans++
		var out planOutcome
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			var err error
			out, err = s.advancePlan(ctx, tx, g, p, wars, now)
			return err
		})
		if err != nil {
			rep.Failed++
			s.logger().Printf("travel plan=%s err=%v", p.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rep.Steps += out.steps
		if out.arrived {
			rep.Arrived++
		}
		if out.halted {
			rep.Halted++
		}
		if out.encounter {
			rep.Encounters++
		}
		if out.pvp {
			rep.PvP++
		}
		em := s.emitter()
		for _, n := range out.notes {
			em.Emit(n.name, n.payload)
		}
	}
	return rep, firstErr
}

func (s *Service) advancePlan(ctx context.Context, tx *store.Store, g *Graph, plan model.TravelPlan,
	wars []model.War, now time.Time) (planOutcome, error) {
	var out planOutcome

	party := make([]*model.Character, 0, len(plan.Party()))
	for _, id := range plan.Party() {
		c, err := tx.GetCharacter(ctx, id)
		if errors.Is(err, store.ErrNotFound) && id != plan.LeaderID {
			continue
		}
		if err != nil {
			return out, err
		}
		party = append(party, c)
	}
	leader := party[0]

	halt := func(reason string) error {
		plan.Status = model.TravelHalted
		out.halted = true
		out.notes = append(out.notes, note{events.TravelHalted, map[string]any{
			"plan_id": plan.ID, "leader_id": plan.LeaderID, "node_id": leader.NodeID, "reason": reason,
		}})
		return tx.SaveTravelPlan(ctx, &plan)
	}

	if leader.HP <= 0 {
		return out, halt("incapacitated")
	}
	dest, ok := g.GateOf(plan.DestinationTownID)
	if !ok {
		return out, halt("unknown destination")
	}

	moves, canSkip := 0, true
	for i, c := range party {
		m := 1
		if s.Catalogs != nil {
			m = s.Catalogs.MovesPerTick(c.ActiveProfessions)
		}
		if i == 0 || m < moves {
			moves = m
		}
		canSkip = canSkip && s.canSkip(c.Race)
	}
	ids := plan.Party()

	for step := 0; step < moves; step++ {
		at, ok := CurrentNode(g, leader)
		if !ok {
			return out, halt("no position")
		}
		if at == dest {
			break
		}
		path, ok := g.ShortestPath(at, dest)
		if !ok {
			return out, halt("unreachable")
		}
		next := path[1]
		if canSkip && len(path) > 2 {
			next = path[2]
		}
		for _, c := range party[1:] {
			// Stragglers regroup on the leader before the step.
			c.NodeID, c.TownID = leader.NodeID, leader.TownID
		}
		for _, c := range party {
			if _, err := applyMove(g, c, next, canSkip); err != nil {
				return out, err
			}
		}
		out.steps++
		if next == dest {
			break
		}

		node, _ := g.Node(next)
		hostiles, err := s.hostiles(ctx, tx, next, leader, ids, now, wars)
		if err != nil {
			return out, err
		}
		if len(hostiles) > 0 {
			out.pvp = true
			if err := s.fightPvP(ctx, tx, leader, hostiles[0], &out); err != nil {
				return out, err
			}
			break
		}
		m, hit, err := s.checkNodeEncounter(ctx, tx, node, leader, AtWar(leader.KingdomID, wars))
		if err != nil {
			return out, err
		}
		if hit {
			out.encounter = true
			s.fightMonster(party, *m, node, &out)
			break
		}
	}

	for _, c := range party {
		if err := tx.SaveCharacter(ctx, c); err != nil {
			return out, err
		}
	}
	if at, _ := CurrentNode(g, leader); at == dest {
		plan.Status = model.TravelArrived
		out.arrived = true
		out.notes = append(out.notes, note{events.TravelArrived, map[string]any{
			"plan_id": plan.ID, "leader_id": plan.LeaderID, "town_id": plan.DestinationTownID,
		}})
		return out, tx.SaveTravelPlan(ctx, &plan)
	}
	if leader.HP <= 0 {
		return out, halt("defeated")
	}
	return out, tx.SaveTravelPlan(ctx, &plan)
}

func power(c *model.Character) int {
	return formula.CharacterPower(c.Level, sustenance.Penalty(c))
}

func hurt(c *model.Character, dmg int) {
	c.HP -= dmg
	if c.HP < 0 {
		c.HP = 0
	}
}

// fightMonster runs one exchange: every party member takes a hit.
func (s *Service) fightMonster(party []*model.Character, m model.Monster, node model.LocationNode, out *planOutcome) {
	rng := s.rng()
	damage := map[string]int{}
	for _, c := range party {
		dmg := formula.CombatDamage(m.Power, power(c), rng.Float64())
		hurt(c, dmg)
		damage[c.ID] = dmg
	}
	out.notes = append(out.notes, note{events.EncounterMonster, map[string]any{
		"node_id": node.ID, "monster_id": m.ID, "monster": m.Name, "damage": damage,
	}})
}

// fightPvP trades one hit between the leader and the first hostile.
func (s *Service) fightPvP(ctx context.Context, tx *store.Store, leader *model.Character, h Hostile, out *planOutcome) error {
	rng := s.rng()
	attacker := h.Character
	toLeader := formula.CombatDamage(power(&attacker), power(leader), rng.Float64())
	toAttacker := formula.CombatDamage(power(leader), power(&attacker), rng.Float64())
	hurt(leader, toLeader)
	hurt(&attacker, toAttacker)
	if err := tx.SaveCharacter(ctx, &attacker); err != nil {
		return err
	}
	out.notes = append(out.notes, note{events.EncounterPvP, map[string]any{
		"node_id": h.Order.NodeID, "traveler_id": leader.ID, "hostile_id": attacker.ID,
		"order": h.Order.Kind, "damage_taken": toLeader, "damage_dealt": toAttacker,
	}})
	return nil
}
