// Package governance moves elections and impeachments through their phases
// once their deadlines pass. Votes are accumulated elsewhere.
package governance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

type Service struct {
	Store  *store.Store
	Tuning tuning.Tuning
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

// collector counts per-record failures and keeps the first one.
type collector struct {
	logger *log.Logger
	failed int
	first  error
}

func (c *collector) add(err error) {
	c.failed++
	c.logger.Printf("governance err=%v", err)
	if c.first == nil {
		c.first = err
	}
}

type ElectionReport struct {
	ToVoting  int `json:"to_voting"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// AdvanceElections walks NOMINATIONS -> VOTING -> COMPLETED. Both transitions
// may happen in one call when both deadlines have passed.
func (s *Service) AdvanceElections(ctx context.Context, now time.Time) (ElectionReport, error) {
	var rep ElectionReport
	open, err := s.Store.ListOpenElections(ctx)
	if err != nil {
		return rep, fmt.Errorf("list elections: %w", err)
	}
	errs := collector{logger: s.logger()}
	for _, e := range open {
		advanced := false
		if e.Phase == model.PhaseNominations {
			if now.Before(e.NominationsEndAt) {
				continue
			}
			e.Phase = model.PhaseVoting
			advanced = true
		}
		if now.Before(e.VotingEndAt) {
			if advanced {
				if err := s.Store.SaveElection(ctx, &e); err != nil {
					errs.add(fmt.Errorf("open voting %s: %w", e.ID, err))
					continue
				}
				rep.ToVoting++
			}
			continue
		}
		if advanced {
			rep.ToVoting++
		}

		winner, counts := Tally(e.Candidates, e.Votes)
		e.Phase = model.PhaseCompleted
		e.WinnerID = winner
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			if winner != "" {
				if err := setRuler(ctx, tx, e.TownID, winner); err != nil {
					return err
				}
			}
			return tx.SaveElection(ctx, &e)
		})
		if err != nil {
			errs.add(fmt.Errorf("complete election %s: %w", e.ID, err))
			continue
		}
		rep.Completed++
		s.emitter().Emit(events.ElectionCompleted, map[string]any{
			"election_id": e.ID, "town_id": e.TownID, "office": e.Office, "winner_id": winner, "tally": counts,
		})
	}
	rep.Failed = errs.failed
	return rep, errs.first
}

type ImpeachmentReport struct {
	Removed  int `json:"removed"`
	Retained int `json:"retained"`
	Failed   int `json:"failed"`
}

// ResolveImpeachments closes every ACTIVE impeachment whose voting window ended.
func (s *Service) ResolveImpeachments(ctx context.Context, now time.Time) (ImpeachmentReport, error) {
	var rep ImpeachmentReport
	active, err := s.Store.ListActiveImpeachments(ctx)
	if err != nil {
		return rep, fmt.Errorf("list impeachments: %w", err)
	}
	errs := collector{logger: s.logger()}
	for _, im := range active {
		if now.Before(im.EndsAt) {
			continue
		}
		im.Status = model.ImpeachmentResolved
		im.Outcome = model.OutcomeRetained
		if ImpeachmentPasses(im.VotesFor, im.VotesAgainst, s.Tuning.Governance.ImpeachmentThreshold) {
			im.Outcome = model.OutcomeRemoved
		}
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			if im.Outcome == model.OutcomeRemoved {
				if err := clearRuler(ctx, tx, im.TownID, im.TargetID); err != nil {
					return err
				}
			}
			return tx.SaveImpeachment(ctx, &im)
		})
		if err != nil {
			errs.add(fmt.Errorf("resolve impeachment %s: %w", im.ID, err))
			continue
		}
		if im.Outcome == model.OutcomeRemoved {
			rep.Removed++
		} else {
			rep.Retained++
		}
		s.emitter().Emit(events.ImpeachmentResolved, map[string]any{
			"impeachment_id": im.ID, "town_id": im.TownID, "target_id": im.TargetID, "outcome": im.Outcome,
			"votes_for": im.VotesFor, "votes_against": im.VotesAgainst,
		})
	}
	rep.Failed = errs.failed
	return rep, errs.first
}

func setRuler(ctx context.Context, tx *store.Store, townID, rulerID string) error {
	t, err := tx.GetTown(ctx, townID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	t.RulerID = rulerID
	return tx.SaveTown(ctx, t)
}

// clearRuler only clears the seat when target still holds it.
func clearRuler(ctx context.Context, tx *store.Store, townID, targetID string) error {
	t, err := tx.GetTown(ctx, townID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if t.RulerID != targetID {
		return nil
	}
	t.RulerID = ""
	return tx.SaveTown(ctx, t)
}
