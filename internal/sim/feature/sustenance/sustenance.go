// Package sustenance runs spoilage and the daily consumption state machine.
//
// Every race lives by one sustenance variant from the catalog. Plain hunger
// walks FED..INCAPACITATED by days since the last meal; counter variants keep
// a capped decay stage per variant id. Both share the same selection and reset
// rules.
package sustenance

import (
	"context"
	"fmt"
	"log"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/catalogs"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/formula"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

type Service struct {
	Store    *store.Store
	Catalogs *catalogs.Catalogs
	Tuning   tuning.Tuning
	Events   events.Emitter
	Logger   *log.Logger
}

type ConsumptionResult struct {
	CharacterID string            `json:"character_id"`
	Variant     string            `json:"variant"`
	Consumed    *model.Item       `json:"consumed,omitempty"`
	Buff        *model.Buff       `json:"buff,omitempty"`
	HungerState model.HungerState `json:"hunger_state"`
	DaysSince   int               `json:"days_since_last_meal"`
	DecayStage  int               `json:"decay_stage"`
}

func (r ConsumptionResult) Ate() bool { return r.Consumed != nil }

var plainHunger = catalogs.SustenanceDef{
	ID:         catalogs.DefaultSustenance,
	Mode:       catalogs.ModeHunger,
	Categories: []string{"FOOD"},
}

func (s *Service) variantFor(race string) catalogs.SustenanceDef {
	if s.Catalogs == nil {
		return plainHunger
	}
	def := s.Catalogs.SustenanceFor(race)
	if def.Mode == "" {
		return plainHunger
	}
	return def
}

func (s *Service) capFor(def catalogs.SustenanceDef) int {
	if def.Cap > 0 {
		return def.Cap
	}
	return s.Tuning.Hunger.AltDecayCap
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

// ProcessConsumption feeds one character from its inventory using the variant
// its race lives by.
func (s *Service) ProcessConsumption(ctx context.Context, characterID string) (ConsumptionResult, error) {
	c, err := s.Store.GetCharacter(ctx, characterID)
	if err != nil {
		return ConsumptionResult{}, err
	}
	return s.consume(ctx, characterID, s.variantFor(c.Race))
}

// ProcessAltSustenance runs the state machine for an explicit variant id,
// regardless of the character's race.
func (s *Service) ProcessAltSustenance(ctx context.Context, characterID, variantID string) (ConsumptionResult, error) {
	if s.Catalogs == nil {
		return ConsumptionResult{}, fmt.Errorf("no catalogs loaded")
	}
	def, ok := s.Catalogs.Sustenance[variantID]
	if !ok {
		return ConsumptionResult{}, fmt.Errorf("unknown sustenance variant %q", variantID)
	}
	return s.consume(ctx, characterID, def)
}

func (s *Service) consume(ctx context.Context, characterID string, def catalogs.SustenanceDef) (ConsumptionResult, error) {
	res := ConsumptionResult{CharacterID: characterID, Variant: def.ID}
	var before, after string

	err := s.Store.InTx(ctx, func(tx *store.Store) error {
		c, err := tx.GetCharacter(ctx, characterID)
		if err != nil {
			return err
		}
		items, err := tx.ListItemsByOwner(ctx, characterID)
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		before = stateKey(c, def)

		if c.ActiveBuff != nil {
			c.ActiveBuff.Days--
			if c.ActiveBuff.Days <= 0 {
				c.ActiveBuff = nil
			}
		}

		food, ok := PickFood(items, c.FoodPolicy, func(it model.Item) bool {
			return def.Accepts(it.Category, it.TemplateID)
		})
		if ok {
			if food.Quantity <= 1 {
				if _, err := tx.DeleteItem(ctx, food.ID); err != nil {
					return err
				}
				if _, err := tx.DeleteListingsForItem(ctx, food.ID); err != nil {
					return err
				}
			} else {
				rest := food
				rest.Quantity--
				if err := tx.SaveItem(ctx, &rest); err != nil {
					return err
				}
			}
			eaten := food
			eaten.Quantity = 1
			res.Consumed = &eaten
			if food.Buff != nil {
				b := *food.Buff
				c.ActiveBuff = &b
				res.Buff = &b
			}
		}

		switch def.Mode {
		case catalogs.ModeCounter:
			if c.AltDecay == nil {
				c.AltDecay = map[string]int{}
			}
			c.AltDecay[def.ID] = NextDecayStage(c.AltDecay[def.ID], ok, s.capFor(def))
			res.DecayStage = c.AltDecay[def.ID]
		default:
			if ok {
				c.DaysSinceLastMeal = 0
			} else {
				c.DaysSinceLastMeal++
			}
			c.HungerState = HungerStateFor(c.DaysSinceLastMeal, s.Tuning.Hunger)
		}
		res.HungerState = c.HungerState
		res.DaysSince = c.DaysSinceLastMeal
		after = stateKey(c, def)
		return tx.SaveCharacter(ctx, c)
	})
	if err != nil {
		return ConsumptionResult{}, fmt.Errorf("consume %s: %w", characterID, err)
	}
	if before != after {
		s.emitter().Emit(events.SustenanceStateChanged, res)
	}
	return res, nil
}

func stateKey(c *model.Character, def catalogs.SustenanceDef) string {
	if def.Mode == catalogs.ModeCounter {
		return fmt.Sprintf("%s:%d", def.ID, c.AltDecay[def.ID])
	}
	return string(c.HungerState)
}

type ConsumeSummary struct {
	Characters int `json:"characters"`
	Ate        int `json:"ate"`
	Missed     int `json:"missed"`
	Failed     int `json:"failed"`
}

// ConsumeAll feeds every character. A failure for one character is logged and
// counted; the rest still eat. The first failure is returned.
func (s *Service) ConsumeAll(ctx context.Context) (ConsumeSummary, error) {
	var sum ConsumeSummary
	chars, err := s.Store.ListCharacters(ctx)
	if err != nil {
		return sum, fmt.Errorf("list characters: %w", err)
	}
	var firstErr error
	for _, c := range chars {
		sum.Characters++
		res, err := s.ProcessConsumption(ctx, c.ID)
		if err != nil {
			sum.Failed++
			s.logger().Printf("consumption character=%s err=%v", c.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if res.Ate() {
			sum.Ate++
		} else {
			sum.Missed++
		}
	}
	return sum, firstErr
}

// Penalty is the combat and yield multiplier for the character's current state.
func Penalty(c *model.Character) float64 {
	stage := 0
	for _, v := range c.AltDecay {
		if v > stage {
			stage = v
		}
	}
	return formula.SustenancePenalty(c.HungerState, stage)
}
