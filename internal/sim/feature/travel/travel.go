// Package travel resolves movement over the location graph: routes between
// settlements, one-step move legality, and the encounters a step triggers.
package travel

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/catalogs"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

// RNG is satisfied by *rand.Rand from math/rand/v2.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }
func (globalRNG) IntN(n int) int   { return rand.IntN(n) }

type Service struct {
	Store    *store.Store
	Index    *Index
	Catalogs *catalogs.Catalogs
	Tuning   tuning.Tuning
	Events   events.Emitter
	Logger   *log.Logger
	RNG      RNG
}

func (s *Service) rng() RNG {
	if s.RNG == nil {
		return globalRNG{}
	}
	return s.RNG
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

func (s *Service) index() *Index {
	if s.Index == nil {
		s.Index = &Index{Store: s.Store}
	}
	return s.Index
}

func (s *Service) canSkip(race string) bool {
	return s.Catalogs != nil && s.Catalogs.CanSkipNode(race)
}

func (s *Service) RouteBetweenTowns(ctx context.Context, fromTown, toTown string) (Route, error) {
	g, err := s.index().Graph(ctx)
	if err != nil {
		return Route{}, err
	}
	return g.RouteBetweenTowns(fromTown, toTown)
}

type MoveResult struct {
	CharacterID string `json:"character_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	TownID      string `json:"town_id,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
}

// CurrentNode is the character's node, or its settlement's gate when inside one.
func CurrentNode(g *Graph, c *model.Character) (string, bool) {
	if c.NodeID != "" {
		return c.NodeID, true
	}
	if c.TownID != "" {
		return g.GateOf(c.TownID)
	}
	return "", false
}

// applyMove validates and applies one step to c in memory.
func applyMove(g *Graph, c *model.Character, target string, canSkip bool) (MoveResult, error) {
	at, ok := CurrentNode(g, c)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrNoPosition, c.ID)
	}
	node, ok := g.Node(target)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}
	legal, skipped := g.CanReach(at, target, canSkip)
	if !legal {
		return MoveResult{}, fmt.Errorf("%w: %s -> %s", ErrIllegalMove, at, target)
	}
	c.NodeID = target
	if node.IsGate() {
		c.TownID = node.TownID
	} else {
		c.TownID = ""
	}
	return MoveResult{CharacterID: c.ID, From: at, To: target, TownID: c.TownID, Skipped: skipped}, nil
}

// ResolveMove moves a character one legal step and persists the new position.
func (s *Service) ResolveMove(ctx context.Context, characterID, targetNodeID string) (MoveResult, error) {
	g, err := s.index().Graph(ctx)
	if err != nil {
		return MoveResult{}, err
	}
	var res MoveResult
	err = s.Store.InTx(ctx, func(tx *store.Store) error {
		c, err := tx.GetCharacter(ctx, characterID)
		if err != nil {
			return err
		}
		res, err = applyMove(g, c, targetNodeID, s.canSkip(c.Race))
		if err != nil {
			return err
		}
		return tx.SaveCharacter(ctx, c)
	})
	return res, err
}
