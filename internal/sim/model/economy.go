package model

import "time"

type Resource struct {
	ID          string `json:"id"`
	NodeID      string `json:"node_id"`
	TemplateID  string `json:"template_id"`
	Remaining   int    `json:"remaining"`
	Max         int    `json:"max"`
	RegenPerDay int    `json:"regen_per_day"`
}

type LoanStatus string

const (
	LoanActive    LoanStatus = "ACTIVE"
	LoanRepaid    LoanStatus = "REPAID"
	LoanDefaulted LoanStatus = "DEFAULTED"
)

type Loan struct {
	ID           string     `json:"id"`
	LenderID     string     `json:"lender_id"`
	BorrowerID   string     `json:"borrower_id"`
	TownID       string     `json:"town_id,omitempty"`
	Balance      int64      `json:"balance"`
	DailyRatePct int        `json:"daily_rate_pct"`
	DueAt        time.Time  `json:"due_at"`
	Status       LoanStatus `json:"status"`
}

type NPC struct {
	ID          string `json:"id"`
	EmployerID  string `json:"employer_id"`
	TownID      string `json:"town_id"`
	DailyIncome int64  `json:"daily_income"`
}
