package model

type Item struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`

	// DaysRemaining is nil for non-perishable items.
	DaysRemaining *int  `json:"days_remaining,omitempty"`
	Buff          *Buff `json:"buff,omitempty"`
	// Durability is set on tools only.
	Durability *int `json:"durability,omitempty"`
}

func (it Item) Perishable() bool { return it.DaysRemaining != nil }

func (it Item) Buffed() bool { return it.Buff != nil }

type MarketListing struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	SellerID string `json:"seller_id"`
	TownID   string `json:"town_id"`
	Price    int64  `json:"price"`
}

// ItemGrant describes an item materialized when a timed action is collected.
type ItemGrant struct {
	TemplateID    string `json:"template_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Quantity      int    `json:"quantity"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
	Buff          *Buff  `json:"buff,omitempty"`
}

func IntPtr(v int) *int { return &v }
