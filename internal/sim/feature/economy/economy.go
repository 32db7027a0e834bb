// Package economy holds the daily decay jobs: reputation drift, loan interest
// and defaults, NPC wages, and resource regeneration.
package economy

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

// failures counts per-record errors and keeps the first one.
type failures struct {
	logger *log.Logger
	n      int
	first  error
}

func (f *failures) add(err error) {
	f.n++
	f.logger.Printf("economy err=%v", err)
	if f.first == nil {
		f.first = err
	}
}

// DecayReputation pulls every per-town reputation one step toward zero.
// Every job in this package skips a record it cannot write and returns the
// first such error once the rest were processed.
func (s *Service) DecayReputation(ctx context.Context) (int, error) {
	chars, err := s.Store.ListCharacters(ctx)
	if err != nil {
		return 0, fmt.Errorf("list characters: %w", err)
	}
	step := s.Tuning.Economy.ReputationDecayPerDay
	errs := failures{logger: s.logger()}
	changed := 0
	for _, c := range chars {
		dirty := false
		for town, v := range c.Reputation {
			nv := DecayToward(v, step)
			if nv == v {
				continue
			}
			dirty = true
			if nv == 0 {
				delete(c.Reputation, town)
			} else {
				c.Reputation[town] = nv
			}
		}
		if !dirty {
			continue
		}
		if err := s.Store.SaveCharacter(ctx, &c); err != nil {
			errs.add(fmt.Errorf("reputation %s: %w", c.ID, err))
			continue
		}
		changed++
	}
	return changed, errs.first
}

type LoanReport struct {
	Accrued   int   `json:"accrued"`
	Interest  int64 `json:"interest"`
	Repaid    int   `json:"repaid"`
	Defaulted int   `json:"defaulted"`
	Failed    int   `json:"failed"`
}

// ProcessLoans accrues a day of interest on every active loan. Loans past due
// are settled from the borrower's gold; whatever cannot be paid defaults the
// loan and costs the borrower reputation in the loan's town.
func (s *Service) ProcessLoans(ctx context.Context, now time.Time) (LoanReport, error) {
	var rep LoanReport
	loans, err := s.Store.ListLoans(ctx, model.LoanActive)
	if err != nil {
		return rep, fmt.Errorf("list loans: %w", err)
	}
	errs := failures{logger: s.logger()}
	for _, l := range loans {
		var (
			defaulted bool
			interest  int64
		)
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			rate := l.DailyRatePct
			if rate <= 0 {
				rate = s.Tuning.Economy.DefaultLoanDailyRatePct
			}
			interest = DailyInterest(l.Balance, rate)
			l.Balance += interest

			if now.Before(l.DueAt) {
				return tx.SaveLoan(ctx, &l)
			}

			borrower, err := tx.GetCharacter(ctx, l.BorrowerID)
			if err != nil {
				return err
			}
			paid := borrower.Gold
			if paid > l.Balance {
				paid = l.Balance
			}
			borrower.Gold -= paid
			l.Balance -= paid
			if err := payLender(ctx, tx, l.LenderID, paid); err != nil {
				return err
			}
			if l.Balance == 0 {
				l.Status = model.LoanRepaid
			} else {
				l.Status = model.LoanDefaulted
				defaulted = true
				if l.TownID != "" {
					if borrower.Reputation == nil {
						borrower.Reputation = map[string]int{}
					}
					borrower.Reputation[l.TownID] -= s.Tuning.Economy.LoanDefaultRepPenalty
				}
			}
			if err := tx.SaveCharacter(ctx, borrower); err != nil {
				return err
			}
			return tx.SaveLoan(ctx, &l)
		})
		if err != nil {
			errs.add(fmt.Errorf("loan %s: %w", l.ID, err))
			continue
		}
		rep.Interest += interest
		rep.Accrued++
		switch l.Status {
		case model.LoanRepaid:
			rep.Repaid++
		case model.LoanDefaulted:
			rep.Defaulted++
		}
		if defaulted {
			s.emitter().Emit(events.LoanDefaulted, map[string]any{
				"loan_id": l.ID, "borrower_id": l.BorrowerID, "lender_id": l.LenderID, "outstanding": l.Balance,
			})
		}
	}
	rep.Failed = errs.n
	return rep, errs.first
}

// payLender credits the lender; a lender that no longer exists forfeits.
func payLender(ctx context.Context, tx *store.Store, lenderID string, amount int64) error {
	if amount <= 0 || lenderID == "" {
		return nil
	}
	lender, err := tx.GetCharacter(ctx, lenderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	lender.Gold += amount
	return tx.SaveCharacter(ctx, lender)
}

// AccrueNPCIncome credits each NPC's employer with its daily income.
func (s *Service) AccrueNPCIncome(ctx context.Context) (int64, error) {
	npcs, err := s.Store.ListNPCs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list npcs: %w", err)
	}
	errs := failures{logger: s.logger()}
	var total int64
	for _, n := range npcs {
		if n.DailyIncome <= 0 || n.EmployerID == "" {
			continue
		}
		err := s.Store.InTx(ctx, func(tx *store.Store) error {
			c, err := tx.GetCharacter(ctx, n.EmployerID)
			if err != nil {
				return err
			}
			c.Gold += n.DailyIncome
			return tx.SaveCharacter(ctx, c)
		})
		if errors.Is(err, store.ErrNotFound) {
			s.logger().Printf("npc=%s employer=%s missing", n.ID, n.EmployerID)
			continue
		}
		if err != nil {
			errs.add(fmt.Errorf("npc %s: %w", n.ID, err))
			continue
		}
		total += n.DailyIncome
	}
	return total, errs.first
}

// RegenerateResources refills every gatherable resource by its daily rate.
func (s *Service) RegenerateResources(ctx context.Context) (int, error) {
	res, err := s.Store.ListResources(ctx)
	if err != nil {
		return 0, fmt.Errorf("list resources: %w", err)
	}
	errs := failures{logger: s.logger()}
	n := 0
	for _, r := range res {
		next := Regenerate(r.Remaining, r.Max, r.RegenPerDay)
		if next == r.Remaining {
			continue
		}
		r.Remaining = next
		if err := s.Store.SaveResource(ctx, &r); err != nil {
			errs.add(fmt.Errorf("resource %s: %w", r.ID, err))
			continue
		}
		n++
	}
	return n, errs.first
}
