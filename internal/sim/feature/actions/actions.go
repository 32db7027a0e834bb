// Package actions completes elapsed gathering/crafting timers and guards the
// player-facing collect so each action pays out at most once.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/feature/sustenance"
	"realmtick.io/internal/sim/formula"
	"realmtick.io/internal/sim/model"
)

var (
	ErrAlreadyCollected  = errors.New("action already collected")
	ErrNoCompletedAction = errors.New("no completed action")
	ErrStillInProgress   = errors.New("action still in progress")
)

const (
	CodeAlreadyCollected  = "E_ALREADY_COLLECTED"
	CodeNoCompletedAction = "E_NO_COMPLETED_ACTION"
	CodeInProgress        = "E_IN_PROGRESS"
)

// Code maps a collect error to its stable wire code, or "" for other errors.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyCollected):
		return CodeAlreadyCollected
	case errors.Is(err, ErrNoCompletedAction):
		return CodeNoCompletedAction
	case errors.Is(err, ErrStillInProgress):
		return CodeInProgress
	}
	return ""
}

type Service struct {
	Store  *store.Store
	Events events.Emitter
	Logger *log.Logger
	// NewID defaults to uuid.NewString.
	NewID func() string

	// beforeFlip runs between the status read and the collect transaction.
	beforeFlip func(actionID string)
}

type Reward struct {
	ActionID   string       `json:"action_id"`
	Items      []model.Item `json:"items"`
	Profession string       `json:"profession,omitempty"`
	XP         int          `json:"xp"`
	Level      int          `json:"level,omitempty"`
	LeveledUp  bool         `json:"leveled_up,omitempty"`

	ToolBroken       bool `json:"tool_broken,omitempty"`
	ResourceDepleted bool `json:"resource_depleted,omitempty"`
}

type pending struct {
	name    string
	payload any
}

func (s *Service) emitter() events.Emitter {
	if s.Events == nil {
		return events.Nop
	}
	return s.Events
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// CompleteElapsed marks every IN_PROGRESS action whose timer has run out as
// COMPLETED. No rewards are granted here.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	n, err := s.Store.CompleteElapsedActions(ctx, now)
	if err != nil {
		return 0, err
	}
	if s.Logger != nil && n > 0 {
		s.Logger.Printf("actions completed=%d", n)
	}
	return n, nil
}

// ArchiveCollected drops actions that already paid out.
func (s *Service) ArchiveCollected(ctx context.Context) (int, error) {
	return s.Store.DeleteActionsByStatus(ctx, model.StatusCollected)
}

// Collect pays out the character's completed action of kind. The COMPLETED to
// COLLECTED flip is a conditional update inside the same transaction as the
// payout; losing that race yields ErrAlreadyCollected and grants nothing.
func (s *Service) Collect(ctx context.Context, characterID string, kind model.ActionKind) (Reward, error) {
	a, err := s.Store.LatestAction(ctx, characterID, kind)
	if errors.Is(err, store.ErrNotFound) {
		return Reward{}, ErrNoCompletedAction
	}
	if err != nil {
		return Reward{}, fmt.Errorf("lookup action: %w", err)
	}
	switch a.Status {
	case model.StatusInProgress:
		// Also when the timer ran out after the last tick: only the tick completes actions.
		return Reward{}, ErrStillInProgress
	case model.StatusCollected:
		return Reward{}, ErrAlreadyCollected
	case model.StatusCompleted:
	default:
		return Reward{}, fmt.Errorf("action %s: unknown status %q", a.ID, a.Status)
	}

	if s.beforeFlip != nil {
		s.beforeFlip(a.ID)
	}

	var (
		reward Reward
		notes  []pending
	)
	err = s.Store.InTx(ctx, func(tx *store.Store) error {
		reward, notes = Reward{ActionID: a.ID, Profession: a.Profession, XP: a.XP}, nil

		flipped, err := tx.MarkCollected(ctx, a.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrAlreadyCollected
		}

		c, err := tx.GetCharacter(ctx, characterID)
		if err != nil {
			return err
		}

		penalty := 1.0
		if a.Kind == model.KindGathering {
			penalty = sustenance.Penalty(c)
		}
		gathered := 0
		for _, g := range a.Outputs {
			qty := g.Quantity
			if penalty < 1 {
				qty = int(float64(qty) * penalty)
				if qty < 1 {
					qty = 1
				}
			}
			it := model.Item{
				ID:            s.newID(),
				OwnerID:       characterID,
				TemplateID:    g.TemplateID,
				Name:          g.Name,
				Category:      g.Category,
				Quantity:      qty,
				DaysRemaining: g.DaysRemaining,
				Buff:          g.Buff,
			}
			if err := tx.SaveItem(ctx, &it); err != nil {
				return err
			}
			reward.Items = append(reward.Items, it)
			gathered += qty
		}

		if a.Profession != "" && a.XP > 0 {
			if c.Professions == nil {
				c.Professions = map[string]model.ProfessionProgress{}
			}
			p := c.Professions[a.Profession]
			if p.Level == 0 {
				p.Level = 1
			}
			p.XP += a.XP
			lvl := formula.LevelForXP(p.XP)
			if lvl > p.Level {
				reward.LeveledUp = true
				notes = append(notes, pending{events.CharacterLevelUp, map[string]any{
					"character_id": characterID, "profession": a.Profession, "level": lvl,
				}})
			}
			p.Level = lvl
			c.Professions[a.Profession] = p
			reward.Level = lvl
		}

		if a.ToolItemID != "" {
			broken, err := wearTool(ctx, tx, a.ToolItemID)
			if err != nil {
				return err
			}
			if broken {
				reward.ToolBroken = true
				notes = append(notes, pending{events.ToolBroken, map[string]any{
					"character_id": characterID, "item_id": a.ToolItemID,
				}})
			}
		}

		if a.Kind == model.KindGathering && a.ResourceID != "" && gathered > 0 {
			depleted, err := depleteResource(ctx, tx, a.ResourceID, gathered)
			if err != nil {
				return err
			}
			if depleted {
				reward.ResourceDepleted = true
				notes = append(notes, pending{events.ResourceDepleted, map[string]any{
					"character_id": characterID, "resource_id": a.ResourceID,
				}})
			}
		}

		return tx.SaveCharacter(ctx, c)
	})
	if err != nil {
		return Reward{}, err
	}

	em := s.emitter()
	for _, n := range notes {
		em.Emit(n.name, n.payload)
	}
	return reward, nil
}

// wearTool takes one point of durability; a tool at zero is destroyed.
func wearTool(ctx context.Context, tx *store.Store, itemID string) (bool, error) {
	tool, err := tx.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if tool.Durability == nil {
		return false, nil
	}
	left := *tool.Durability - 1
	if left > 0 {
		tool.Durability = &left
		return false, tx.SaveItem(ctx, tool)
	}
	if _, err := tx.DeleteItem(ctx, itemID); err != nil {
		return false, err
	}
	return true, nil
}

// depleteResource reports true only on the transition to zero.
func depleteResource(ctx context.Context, tx *store.Store, resourceID string, amount int) (bool, error) {
	r, err := tx.GetResource(ctx, resourceID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if r.Remaining <= 0 {
		return false, nil
	}
	r.Remaining -= amount
	if r.Remaining < 0 {
		r.Remaining = 0
	}
	if err := tx.SaveResource(ctx, r); err != nil {
		return false, err
	}
	return r.Remaining == 0, nil
}
