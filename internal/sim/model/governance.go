package model

import "time"

type ElectionPhase string

const (
	PhaseNominations ElectionPhase = "NOMINATIONS"
	PhaseVoting      ElectionPhase = "VOTING"
	PhaseCompleted   ElectionPhase = "COMPLETED"
)

type Election struct {
	ID               string        `json:"id"`
	TownID           string        `json:"town_id"`
	Office           string        `json:"office"`
	Phase            ElectionPhase `json:"phase"`
	NominationsEndAt time.Time     `json:"nominations_end_at"`
	VotingEndAt      time.Time     `json:"voting_end_at"`
	// Candidates is kept in nomination order.
	Candidates []string `json:"candidates,omitempty"`
	// Votes maps voter id -> candidate id.
	Votes    map[string]string `json:"votes,omitempty"`
	WinnerID string            `json:"winner_id,omitempty"`
}

type ImpeachmentStatus string

const (
	ImpeachmentActive   ImpeachmentStatus = "ACTIVE"
	ImpeachmentResolved ImpeachmentStatus = "RESOLVED"
)

type ImpeachmentOutcome string

const (
	OutcomeRemoved  ImpeachmentOutcome = "REMOVED"
	OutcomeRetained ImpeachmentOutcome = "RETAINED"
)

type Impeachment struct {
	ID           string             `json:"id"`
	TownID       string             `json:"town_id"`
	TargetID     string             `json:"target_id"`
	Status       ImpeachmentStatus  `json:"status"`
	EndsAt       time.Time          `json:"ends_at"`
	VotesFor     int                `json:"votes_for"`
	VotesAgainst int                `json:"votes_against"`
	Outcome      ImpeachmentOutcome `json:"outcome,omitempty"`
}
