package tick

import (
	"context"
	"log"
	"time"

	"realmtick.io/internal/sim/feature/actions"
	"realmtick.io/internal/sim/feature/economy"
	"realmtick.io/internal/sim/feature/governance"
	"realmtick.io/internal/sim/feature/structures"
	"realmtick.io/internal/sim/feature/sustenance"
	"realmtick.io/internal/sim/feature/travel"
)

const (
	StepActionsComplete = "actions.complete"
	StepActionsArchive  = "actions.archive"
	StepSpoilage        = "sustenance.spoilage"
	StepConsumption     = "sustenance.consumption"
	StepResourceRegen   = "economy.resource_regen"
	StepTravel          = "travel.advance"
	StepConstruction    = "structures.construction"
	StepUpkeep          = "structures.upkeep"
	StepElections       = "governance.elections"
	StepImpeachments    = "governance.impeachments"
	StepReputationDecay = "economy.reputation_decay"
	StepLoans           = "economy.loans"
	StepNPCIncome       = "economy.npc_income"
)

// Deps are the services the default step list drives.
type Deps struct {
	Actions    *actions.Service
	Sustenance *sustenance.Service
	Travel     *travel.Service
	Structures *structures.Service
	Governance *governance.Service
	Economy    *economy.Service
	Logger     *log.Logger
}

// DefaultSteps returns the daily step list in execution order. Actions finish
// before anyone eats. Spoilage runs before consumption, so food that spoils
// today is removed before anyone eats. Travel runs after consumption so
// hunger penalties apply to the day's movement.
func DefaultSteps(d Deps) []Step {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return []Step{
		{Name: StepActionsComplete, Run: func(ctx context.Context, now time.Time) error {
			n, err := d.Actions.CompleteElapsed(ctx, now)
			logger.Printf("step=%s completed=%d", StepActionsComplete, n)
			return err
		}},
		{Name: StepActionsArchive, Run: func(ctx context.Context, _ time.Time) error {
			n, err := d.Actions.ArchiveCollected(ctx)
			logger.Printf("step=%s archived=%d", StepActionsArchive, n)
			return err
		}},
		{Name: StepSpoilage, Run: func(ctx context.Context, now time.Time) error {
			_, err := d.Sustenance.ProcessSpoilage(ctx, now)
			return err
		}},
		{Name: StepConsumption, Run: func(ctx context.Context, _ time.Time) error {
			sum, err := d.Sustenance.ConsumeAll(ctx)
			logger.Printf("step=%s characters=%d ate=%d missed=%d failed=%d",
				StepConsumption, sum.Characters, sum.Ate, sum.Missed, sum.Failed)
			return err
		}},
		{Name: StepResourceRegen, Run: func(ctx context.Context, _ time.Time) error {
			n, err := d.Economy.RegenerateResources(ctx)
			logger.Printf("step=%s regenerated=%d", StepResourceRegen, n)
			return err
		}},
		{Name: StepTravel, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Travel.Advance(ctx, now)
			logger.Printf("step=%s plans=%d arrived=%d halted=%d encounters=%d pvp=%d",
				StepTravel, rep.Plans, rep.Arrived, rep.Halted, rep.Encounters, rep.PvP)
			return err
		}},
		{Name: StepConstruction, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Structures.AdvanceConstruction(ctx, now)
			logger.Printf("step=%s started=%d completed=%d failed=%d",
				StepConstruction, rep.Started, rep.Completed, rep.Failed)
			return err
		}},
		{Name: StepUpkeep, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Structures.ApplyUpkeep(ctx, now)
			logger.Printf("step=%s charged=%d late=%d warnings=%d seized=%d failed=%d",
				StepUpkeep, rep.Charged, rep.Late, rep.Warnings, rep.Seized, rep.Failed)
			return err
		}},
		{Name: StepElections, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Governance.AdvanceElections(ctx, now)
			logger.Printf("step=%s to_voting=%d completed=%d failed=%d",
				StepElections, rep.ToVoting, rep.Completed, rep.Failed)
			return err
		}},
		{Name: StepImpeachments, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Governance.ResolveImpeachments(ctx, now)
			logger.Printf("step=%s removed=%d retained=%d failed=%d",
				StepImpeachments, rep.Removed, rep.Retained, rep.Failed)
			return err
		}},
		{Name: StepReputationDecay, Run: func(ctx context.Context, _ time.Time) error {
			n, err := d.Economy.DecayReputation(ctx)
			logger.Printf("step=%s decayed=%d", StepReputationDecay, n)
			return err
		}},
		{Name: StepLoans, Run: func(ctx context.Context, now time.Time) error {
			rep, err := d.Economy.ProcessLoans(ctx, now)
			logger.Printf("step=%s accrued=%d repaid=%d defaulted=%d failed=%d",
				StepLoans, rep.Accrued, rep.Repaid, rep.Defaulted, rep.Failed)
			return err
		}},
		{Name: StepNPCIncome, Run: func(ctx context.Context, _ time.Time) error {
			gold, err := d.Economy.AccrueNPCIncome(ctx)
			logger.Printf("step=%s gold=%d", StepNPCIncome, gold)
			return err
		}},
	}
}

// StepNames lists the names of steps in order.
func StepNames(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name)
	}
	return out
}
