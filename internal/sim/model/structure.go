package model

import "time"

// UpkeepPolicy is read from building data; the engine only flags state against it.
type UpkeepPolicy struct {
	WarnAfterDays  int `json:"warn_after_days"`
	SeizeAfterDays int `json:"seize_after_days"`
}

type Building struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	TownID  string `json:"town_id"`
	Type    string `json:"type"`
	Level   int    `json:"level"`

	UpkeepPerDay   int64        `json:"upkeep_per_day"`
	UpkeepDueAt    time.Time    `json:"upkeep_due_at"`
	DelinquentDays int          `json:"delinquent_days"`
	Seized         bool         `json:"seized"`
	Policy         UpkeepPolicy `json:"policy"`
}

type ConstructionStatus string

const (
	ConstructionPending    ConstructionStatus = "PENDING"
	ConstructionInProgress ConstructionStatus = "IN_PROGRESS"
	ConstructionComplete   ConstructionStatus = "COMPLETE"
)

type Construction struct {
	ID           string             `json:"id"`
	BuildingID   string             `json:"building_id"`
	TargetLevel  int                `json:"target_level"`
	DurationDays int                `json:"duration_days"`
	Status       ConstructionStatus `json:"status"`
	CompletesAt  time.Time          `json:"completes_at"`
}
