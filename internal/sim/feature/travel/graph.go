package travel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/model"
)

var (
	ErrUnreachable = errors.New("destination unreachable")
	ErrUnknownTown = errors.New("unknown town")
	ErrUnknownNode = errors.New("unknown node")
	ErrIllegalMove = errors.New("illegal move")
	ErrNoPosition  = errors.New("character has no position")
)

// Graph is an immutable adjacency index over location nodes.
type Graph struct {
	nodes      map[string]model.LocationNode
	adj        map[string][]string
	gateByTown map[string]string
}

func BuildGraph(nodes []model.LocationNode, conns []model.NodeConnection) *Graph {
	g := &Graph{
		nodes:      make(map[string]model.LocationNode, len(nodes)),
		adj:        make(map[string][]string, len(nodes)),
		gateByTown: map[string]string{},
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
		if n.IsGate() {
			if prev, ok := g.gateByTown[n.TownID]; !ok || n.ID < prev {
				g.gateByTown[n.TownID] = n.ID
			}
		}
	}
	seen := map[[2]string]bool{}
	link := func(from, to string) {
		if from == to || seen[[2]string{from, to}] {
			return
		}
		if _, ok := g.nodes[from]; !ok {
			return
		}
		if _, ok := g.nodes[to]; !ok {
			return
		}
		seen[[2]string{from, to}] = true
		g.adj[from] = append(g.adj[from], to)
	}
	for _, c := range conns {
		link(c.FromNodeID, c.ToNodeID)
		if c.Bidirectional {
			link(c.ToNodeID, c.FromNodeID)
		}
	}
	for id := range g.adj {
		sort.Strings(g.adj[id])
	}
	return g
}

func (g *Graph) Node(id string) (model.LocationNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) Neighbors(id string) []string { return g.adj[id] }

func (g *Graph) GateOf(townID string) (string, bool) {
	id, ok := g.gateByTown[townID]
	return id, ok
}

func (g *Graph) Len() int { return len(g.nodes) }

// ShortestPath is a breadth-first search; neighbors are visited in id order so
// ties resolve the same way on every run.
func (g *Graph) ShortestPath(from, to string) ([]string, bool) {
	if _, ok := g.nodes[from]; !ok {
		return nil, false
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	prev := map[string]string{from: ""}
	q := []string{from}
	for len(q) > 0 {
		cur := q[0]
		q = q[1:]
		for _, next := range g.adj[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				return unwind(prev, to), true
			}
			q = append(q, next)
		}
	}
	return nil, false
}

func unwind(prev map[string]string, to string) []string {
	var path []string
	for at := to; at != ""; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type Route struct {
	FromTownID string   `json:"from_town_id"`
	ToTownID   string   `json:"to_town_id"`
	Nodes      []string `json:"nodes"`
	// Distance is the number of edges.
	Distance int `json:"distance"`
}

func (g *Graph) RouteBetweenTowns(fromTown, toTown string) (Route, error) {
	from, ok := g.GateOf(fromTown)
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownTown, fromTown)
	}
	to, ok := g.GateOf(toTown)
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownTown, toTown)
	}
	path, ok := g.ShortestPath(from, to)
	if !ok {
		return Route{}, fmt.Errorf("%w: %s -> %s", ErrUnreachable, fromTown, toTown)
	}
	return Route{FromTownID: fromTown, ToTownID: toTown, Nodes: path, Distance: len(path) - 1}, nil
}

// CanReach reports whether target is one legal step from the node at, and
// whether the step used a skip.
func (g *Graph) CanReach(at, target string, canSkip bool) (ok bool, skipped bool) {
	if at == target {
		return false, false
	}
	for _, n := range g.adj[at] {
		if n == target {
			return true, false
		}
	}
	if !canSkip {
		return false, false
	}
	for _, n := range g.adj[at] {
		for _, nn := range g.adj[n] {
			if nn == target {
				return true, true
			}
		}
	}
	return false, false
}

// Index caches the graph built from the store. Load rebuilds it.
type Index struct {
	Store *store.Store

	mu sync.RWMutex
	g  *Graph
}

func (ix *Index) Load(ctx context.Context) (*Graph, error) {
	nodes, err := ix.Store.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	conns, err := ix.Store.ListConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}
	g := BuildGraph(nodes, conns)
	ix.mu.Lock()
	ix.g = g
	ix.mu.Unlock()
	return g, nil
}

// Graph returns the cached graph, loading it on first use.
func (ix *Index) Graph(ctx context.Context) (*Graph, error) {
	ix.mu.RLock()
	g := ix.g
	ix.mu.RUnlock()
	if g != nil {
		return g, nil
	}
	return ix.Load(ctx)
}
