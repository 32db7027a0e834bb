package model

import "time"

type ActionKind string

const (
	KindGathering ActionKind = "GATHERING"
	KindCrafting  ActionKind = "CRAFTING"
)

type ActionStatus string

const (
	StatusInProgress ActionStatus = "IN_PROGRESS"
	StatusCompleted  ActionStatus = "COMPLETED"
	StatusCollected  ActionStatus = "COLLECTED"
)

type TimedAction struct {
	ID          string       `json:"id"`
	CharacterID string       `json:"character_id"`
	Kind        ActionKind   `json:"kind"`
	Status      ActionStatus `json:"status"`
	StartedAt   time.Time    `json:"started_at"`
	CompletesAt time.Time    `json:"completes_at"`

	Profession string `json:"profession,omitempty"`
	// ResourceID is the gathered resource (GATHERING only).
	ResourceID string `json:"resource_id,omitempty"`
	ToolItemID string `json:"tool_item_id,omitempty"`

	Outputs []ItemGrant `json:"outputs,omitempty"`
	XP      int         `json:"xp,omitempty"`
}
