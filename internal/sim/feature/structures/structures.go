// Package structures advances construction timers and charges building upkeep.
package structures

import (
	"context"
	"fmt"
	"log"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/model"
)

const day = 24 * time.Hour

type Service struct {
	Store  *store.Store
	Events events.Emitter
	Logger *log.Logger
}

func (s *Service) emitter() events.Emitter {
	if s.Events == nil {
		return events.Nop
	}
	return s.Events
}

func (s *Service) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

type ConstructionReport struct {
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// AdvanceConstruction finishes elapsed constructions, then starts the next
// pending one on every idle building. A building runs one construction at a time.
func (s *Service) AdvanceConstruction(ctx context.Context, now time.Time) (ConstructionReport, error) {
	var rep ConstructionReport

	running, err := s.Store.ListConstructionsByStatus(ctx, model.ConstructionInProgress)
	if err != nil {
		return rep, fmt.Errorf("list constructions: %w", err)
	}
	var firstErr error
	fail := func(err error) {
		rep.Failed++
		s.logger().Printf("construction err=%v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	busy := map[string]bool{}
	for _, c := range running {
		if c.CompletesAt.After(now) {
			busy[c.BuildingID] = true
			continue
		}
		b, err := s.complete(ctx, c.ID)
		if err != nil {
			busy[c.BuildingID] = true
			fail(err)
			continue
		}
		if b == nil {
			continue
		}
		rep.Completed++
		s.emitter().Emit(events.BuildingCompleted, map[string]any{
			"building_id": b.ID, "construction_id": c.ID, "town_id": b.TownID, "owner_id": b.OwnerID, "level": b.Level,
		})
	}

	pending, err := s.Store.ListConstructionsByStatus(ctx, model.ConstructionPending)
	if err != nil {
		return rep, fmt.Errorf("list constructions: %w", err)
	}
	for _, c := range pending {
		if busy[c.BuildingID] {
			continue
		}
		c.Status = model.ConstructionInProgress
		c.CompletesAt = now.Add(time.Duration(c.DurationDays) * day)
		busy[c.BuildingID] = true
		if err := s.Store.SaveConstruction(ctx, &c); err != nil {
			fail(fmt.Errorf("start construction %s: %w", c.ID, err))
			continue
		}
		rep.Started++
	}
	return rep, firstErr
}

// complete flips the construction to COMPLETE and raises the building level in
// one transaction. It returns nil when the construction was already finished.
func (s *Service) complete(ctx context.Context, constructionID string) (*model.Building, error) {
	var out *model.Building
	err := s.Store.InTx(ctx, func(tx *store.Store) error {
		c, err := tx.GetConstruction(ctx, constructionID)
		if err != nil {
			return err
		}
		if c.Status != model.ConstructionInProgress {
			return nil
		}
		b, err := tx.GetBuilding(ctx, c.BuildingID)
		if err != nil {
			return err
		}
		if c.TargetLevel > b.Level {
			b.Level = c.TargetLevel
		} else {
			b.Level++
		}
		c.Status = model.ConstructionComplete
		if err := tx.SaveBuilding(ctx, b); err != nil {
			return err
		}
		if err := tx.SaveConstruction(ctx, c); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete construction %s: %w", constructionID, err)
	}
	return out, nil
}

type UpkeepReport struct {
	Charged  int `json:"charged"`
	Late     int `json:"late"`
	Warnings int `json:"warnings"`
	Seized   int `json:"seized"`
	Failed   int `json:"failed"`
}

// ApplyUpkeep charges owners for buildings whose upkeep is due. Missed payments
// raise delinquency; warning and seizure follow the building's own policy.
// A building that cannot be charged is logged and skipped; the first such
// error is returned after every other building was processed.
func (s *Service) ApplyUpkeep(ctx context.Context, now time.Time) (UpkeepReport, error) {
	var rep UpkeepReport
	buildings, err := s.Store.ListBuildings(ctx)
	if err != nil {
		return rep, fmt.Errorf("list buildings: %w", err)
	}
	var firstErr error
	fail := func(err error) {
		rep.Failed++
		s.logger().Printf("upkeep err=%v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	nowNs := now.UTC().UnixNano()
	for _, b := range buildings {
		if b.Seized || b.UpkeepPerDay <= 0 {
			continue
		}
		if b.UpkeepDueAt.IsZero() {
			b.UpkeepDueAt = time.Unix(0, NextDue(nowNs, 0, int64(day))).UTC()
			if err := s.Store.SaveBuilding(ctx, &b); err != nil {
				fail(fmt.Errorf("schedule upkeep %s: %w", b.ID, err))
			}
			continue
		}
		if now.Before(b.UpkeepDueAt) {
			continue
		}

		var status UpkeepStatus
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			owner, err := tx.GetCharacter(ctx, b.OwnerID)
			if err != nil {
				return err
			}
			paid := owner.Gold >= b.UpkeepPerDay
			if paid {
				owner.Gold -= b.UpkeepPerDay
				if err := tx.SaveCharacter(ctx, owner); err != nil {
					return err
				}
			}
			b.DelinquentDays = NextDelinquency(b.DelinquentDays, paid)
			status = Classify(b.DelinquentDays, b.Policy.WarnAfterDays, b.Policy.SeizeAfterDays)
			if status == UpkeepSeized {
				b.Seized = true
			}
			b.UpkeepDueAt = time.Unix(0, NextDue(nowNs, b.UpkeepDueAt.UnixNano(), int64(day))).UTC()
			return tx.SaveBuilding(ctx, &b)
		})
		if err != nil {
			fail(fmt.Errorf("upkeep building %s: %w", b.ID, err))
			continue
		}

		payload := map[string]any{
			"building_id": b.ID, "owner_id": b.OwnerID, "town_id": b.TownID, "delinquent_days": b.DelinquentDays,
		}
		switch status {
		case UpkeepPaid:
			rep.Charged++
		case UpkeepLate:
			rep.Late++
		case UpkeepWarning:
			rep.Late++
			rep.Warnings++
			s.emitter().Emit(events.BuildingUpkeepWarning, payload)
		case UpkeepSeized:
			rep.Late++
			rep.Seized++
			s.emitter().Emit(events.BuildingSeized, payload)
		}
	}
	return rep, firstErr
}
