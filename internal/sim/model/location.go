package model

type NodeType string

const (
	NodeGate     NodeType = "GATE"
	NodeWaypoint NodeType = "WAYPOINT"
)

type LocationNode struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Type                NodeType `json:"type"`
	RegionID            string   `json:"region_id"`
	DangerLevel         int      `json:"danger_level"`
	BaseEncounterChance float64  `json:"base_encounter_chance"`
	// TownID is set on gate nodes only.
	TownID string `json:"town_id,omitempty"`
}

func (n LocationNode) IsGate() bool { return n.Type == NodeGate && n.TownID != "" }

type NodeConnection struct {
	FromNodeID    string `json:"from_node_id"`
	ToNodeID      string `json:"to_node_id"`
	Bidirectional bool   `json:"bidirectional"`
}

type Town struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RegionID  string `json:"region_id"`
	KingdomID string `json:"kingdom_id"`
	RulerID   string `json:"ruler_id,omitempty"`
}

type Monster struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RegionID string `json:"region_id"`
	Level    int    `json:"level"`
	Power    int    `json:"power"`
}

type TravelStatus string

const (
	TravelActive  TravelStatus = "ACTIVE"
	TravelArrived TravelStatus = "ARRIVED"
	TravelHalted  TravelStatus = "HALTED"
)

// TravelPlan moves a leader and its party toward a destination settlement.
type TravelPlan struct {
	ID                string       `json:"id"`
	LeaderID          string       `json:"leader_id"`
	MemberIDs         []string     `json:"member_ids,omitempty"`
	DestinationTownID string       `json:"destination_town_id"`
	Status            TravelStatus `json:"status"`
}

// Party returns the leader followed by members, without duplicates.
func (p TravelPlan) Party() []string {
	out := []string{p.LeaderID}
	seen := map[string]bool{p.LeaderID: true}
	for _, id := range p.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type OrderKind string

const (
	OrderGuard  OrderKind = "GUARD"
	OrderAmbush OrderKind = "AMBUSH"
)

type DailyOrder struct {
	CharacterID string    `json:"character_id"`
	NodeID      string    `json:"node_id"`
	Kind        OrderKind `json:"kind"`
	IssuedOn    string    `json:"issued_on"`
}

type War struct {
	ID                string `json:"id"`
	AttackerKingdomID string `json:"attacker_kingdom_id"`
	DefenderKingdomID string `json:"defender_kingdom_id"`
	Active            bool   `json:"active"`
}

func (w War) Involves(kingdomID string) bool {
	if kingdomID == "" {
		return false
	}
	return w.AttackerKingdomID == kingdomID || w.DefenderKingdomID == kingdomID
}

// Opposes reports whether a and b are on opposite sides of this war.
func (w War) Opposes(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return (w.AttackerKingdomID == a && w.DefenderKingdomID == b) ||
		(w.AttackerKingdomID == b && w.DefenderKingdomID == a)
}
