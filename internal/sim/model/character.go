package model

type HungerState string

const (
	HungerFed           HungerState = "FED"
	HungerHungry        HungerState = "HUNGRY"
	HungerStarving      HungerState = "STARVING"
	HungerIncapacitated HungerState = "INCAPACITATED"
)

type FoodPriority string

const (
	PriorityExpiringFirst FoodPriority = "EXPIRING_FIRST"
	PriorityBestFirst     FoodPriority = "BEST_FIRST"
	PrioritySpecificItem  FoodPriority = "SPECIFIC_ITEM"
	PriorityCategoryOnly  FoodPriority = "CATEGORY_ONLY"
)

// FoodPolicy is the player's preference for what gets eaten each tick.
// PreferredTemplateID is read by SPECIFIC_ITEM, Category by CATEGORY_ONLY.
type FoodPolicy struct {
	Priority            FoodPriority `json:"priority,omitempty"`
	PreferredTemplateID string       `json:"preferred_template_id,omitempty"`
	Category            string       `json:"category,omitempty"`
}

type Buff struct {
	Stat   string `json:"stat"`
	Amount int    `json:"amount"`
	Days   int    `json:"days"`
}

type ProfessionProgress struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

type Character struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Race  string `json:"race"`
	Level int    `json:"level"`

	HP    int   `json:"hp"`
	MaxHP int   `json:"max_hp"`
	Gold  int64 `json:"gold"`

	KingdomID string `json:"kingdom_id,omitempty"`
	// TownID is empty while travelling between settlements.
	TownID string `json:"town_id,omitempty"`
	// NodeID is empty while inside a settlement with no explicit node.
	NodeID string `json:"node_id,omitempty"`

	HungerState       HungerState `json:"hunger_state"`
	DaysSinceLastMeal int         `json:"days_since_last_meal"`
	// AltDecay holds race-specific sustenance counters keyed by variant id (0..cap).
	AltDecay map[string]int `json:"alt_decay,omitempty"`

	FoodPolicy FoodPolicy `json:"food_policy"`
	ActiveBuff *Buff      `json:"active_buff,omitempty"`

	ActiveProfessions []string                      `json:"active_professions,omitempty"`
	Professions       map[string]ProfessionProgress `json:"professions,omitempty"`

	// Reputation per town id.
	Reputation map[string]int `json:"reputation,omitempty"`
}

func (c *Character) HasProfession(id string) bool {
	for _, p := range c.ActiveProfessions {
		if p == id {
			return true
		}
	}
	return false
}

func (c *Character) InWild() bool { return c.TownID == "" }
