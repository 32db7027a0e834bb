package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// StaleAfterHours flags the engine unhealthy when no tick succeeded within the window.
	StaleAfterHours int `yaml:"stale_after_hours"`
	// SchedulerCheckMinutes is how often the scheduler checks whether today's tick is due.
	SchedulerCheckMinutes int `yaml:"scheduler_check_minutes"`

	Hunger     HungerTuning     `yaml:"hunger"`
	Encounters EncounterTuning  `yaml:"encounters"`
	Governance GovernanceTuning `yaml:"governance"`
	Economy    EconomyTuning    `yaml:"economy"`
}

// HungerTuning maps days without a meal onto hunger states.
type HungerTuning struct {
	HungryAfterDays        int `yaml:"hungry_after_days"`
	StarvingAfterDays      int `yaml:"starving_after_days"`
	IncapacitatedAfterDays int `yaml:"incapacitated_after_days"`
	AltDecayCap            int `yaml:"alt_decay_cap"`
}

type EncounterTuning struct {
	LevelBelow    int     `yaml:"level_below"`
	LevelAbove    int     `yaml:"level_above"`
	WartimeFactor float64 `yaml:"wartime_factor"`
	MaxChance     float64 `yaml:"max_chance"`
}

type GovernanceTuning struct {
	ImpeachmentThreshold float64 `yaml:"impeachment_threshold"`
}

type EconomyTuning struct {
	ReputationDecayPerDay   int `yaml:"reputation_decay_per_day"`
	LoanDefaultRepPenalty   int `yaml:"loan_default_rep_penalty"`
	DefaultLoanDailyRatePct int `yaml:"default_loan_daily_rate_pct"`
}

func Defaults() Tuning {
	return Tuning{
		StaleAfterHours:       25,
		SchedulerCheckMinutes: 60,
		Hunger: HungerTuning{
			HungryAfterDays:        1,
			StarvingAfterDays:      3,
			IncapacitatedAfterDays: 5,
			AltDecayCap:            3,
		},
		Encounters: EncounterTuning{
			LevelBelow:    3,
			LevelAbove:    3,
			WartimeFactor: 1.25,
			MaxChance:     1.0,
		},
		Governance: GovernanceTuning{ImpeachmentThreshold: 0.5},
		Economy: EconomyTuning{
			ReputationDecayPerDay:   1,
			LoanDefaultRepPenalty:   10,
			DefaultLoanDailyRatePct: 1,
		},
	}
}

// Load reads a tuning file on top of Defaults; keys missing from the file keep default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	h := t.Hunger
	if h.HungryAfterDays <= 0 || h.StarvingAfterDays <= h.HungryAfterDays || h.IncapacitatedAfterDays <= h.StarvingAfterDays {
		return fmt.Errorf("hunger thresholds must be increasing and positive: %d/%d/%d",
			h.HungryAfterDays, h.StarvingAfterDays, h.IncapacitatedAfterDays)
	}
	if h.AltDecayCap <= 0 {
		return fmt.Errorf("hunger.alt_decay_cap must be positive")
	}
	if t.Encounters.WartimeFactor < 1 {
		return fmt.Errorf("encounters.wartime_factor must be >= 1")
	}
	if t.Encounters.MaxChance <= 0 || t.Encounters.MaxChance > 1 {
		return fmt.Errorf("encounters.max_chance must be in (0,1]")
	}
	if t.Governance.ImpeachmentThreshold < 0 || t.Governance.ImpeachmentThreshold >= 1 {
		return fmt.Errorf("governance.impeachment_threshold must be in [0,1)")
	}
	if t.StaleAfterHours <= 0 {
		return fmt.Errorf("stale_after_hours must be positive")
	}
	return nil
}
