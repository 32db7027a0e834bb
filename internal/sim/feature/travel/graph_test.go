package travel

import (
	"errors"
	"testing"

	"realmtick.io/internal/sim/model"
)

// ashford gate - w1 - w2 - w3 - brine gate, plus a shortcut ashford - w2, and an
// isolated gate for coldwater.
func testGraph() ([]model.LocationNode, []model.NodeConnection) {
	nodes := []model.LocationNode{
		{ID: "g-ash", Type: model.NodeGate, TownID: "ashford", RegionID: "vale"},
		{ID: "w1", Type: model.NodeWaypoint, RegionID: "vale", BaseEncounterChance: 0.2},
		{ID: "w2", Type: model.NodeWaypoint, RegionID: "vale", BaseEncounterChance: 0.2, DangerLevel: 1},
		{ID: "w3", Type: model.NodeWaypoint, RegionID: "vale", BaseEncounterChance: 0.2},
		{ID: "g-brine", Type: model.NodeGate, TownID: "brine", RegionID: "vale"},
		{ID: "g-cold", Type: model.NodeGate, TownID: "coldwater", RegionID: "north"},
	}
	conns := []model.NodeConnection{
		{FromNodeID: "g-ash", ToNodeID: "w1", Bidirectional: true},
		{FromNodeID: "w1", ToNodeID: "w2", Bidirectional: true},
		{FromNodeID: "w2", ToNodeID: "w3", Bidirectional: true},
		{FromNodeID: "w3", ToNodeID: "g-brine", Bidirectional: true},
		{FromNodeID: "g-ash", ToNodeID: "w2", Bidirectional: false},
	}
	return nodes, conns
}

func TestRouteBetweenTownsShortestPath(t *testing.T) {
	g := BuildGraph(testGraph())

	r, err := g.RouteBetweenTowns("ashford", "brine")
	if err != nil {
		t.Fatalf("RouteBetweenTowns: %v", err)
	}
	if r.Distance != 3 || len(r.Nodes) != 4 {
		t.Fatalf("expected 3 edges via the shortcut, got %d (%v)", r.Distance, r.Nodes)
	}
	if r.Nodes[0] != "g-ash" || r.Nodes[1] != "w2" || r.Nodes[3] != "g-brine" {
		t.Fatalf("unexpected path %v", r.Nodes)
	}

	// The shortcut is one-way.
	back, err := g.RouteBetweenTowns("brine", "ashford")
	if err != nil {
		t.Fatalf("RouteBetweenTowns back: %v", err)
	}
	if back.Distance != 4 {
		t.Fatalf("expected 4 edges on the way back, got %d (%v)", back.Distance, back.Nodes)
	}
}

func TestRouteBetweenTownsUnreachable(t *testing.T) {
	g := BuildGraph(testGraph())
	if _, err := g.RouteBetweenTowns("ashford", "coldwater"); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if _, err := g.RouteBetweenTowns("ashford", "atlantis"); !errors.Is(err, ErrUnknownTown) {
		t.Fatalf("expected ErrUnknownTown, got %v", err)
	}
}

func TestApplyMoveLegality(t *testing.T) {
	g := BuildGraph(testGraph())

	walker := &model.Character{ID: "c1", NodeID: "w1"}
	if _, err := applyMove(g, walker, "w3", false); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("two hops without skip must be rejected, got %v", err)
	}
	if _, err := applyMove(g, walker, "w2", false); err != nil {
		t.Fatalf("neighbor move rejected: %v", err)
	}

	skipper := &model.Character{ID: "c2", NodeID: "w1"}
	res, err := applyMove(g, skipper, "w3", true)
	if err != nil || !res.Skipped {
		t.Fatalf("two-hop skip should be legal: res=%+v err=%v", res, err)
	}
	if _, err := applyMove(g, skipper, "g-ash", true); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("three hops must be rejected even with skip, got %v", err)
	}
}

func TestApplyMoveUpdatesTownMembership(t *testing.T) {
	g := BuildGraph(testGraph())
	c := &model.Character{ID: "c1", TownID: "ashford"}

	if _, err := applyMove(g, c, "w1", false); err != nil {
		t.Fatalf("leaving town: %v", err)
	}
	if c.TownID != "" || c.NodeID != "w1" {
		t.Fatalf("expected to be in the wild at w1, got town=%q node=%q", c.TownID, c.NodeID)
	}
	if _, err := applyMove(g, c, "g-ash", false); err != nil {
		t.Fatalf("returning: %v", err)
	}
	if c.TownID != "ashford" {
		t.Fatalf("gate arrival should set town, got %q", c.TownID)
	}
}
