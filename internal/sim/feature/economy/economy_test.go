package economy

import (
	"context"
	"testing"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/persistence/store/storetest"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tuning"
)

var t0 = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *store.Store, *events.Recorder) {
	t.Helper()
	st := storetest.Open(t)
	rec := events.NewRecorder()
	return &Service{Store: st, Tuning: tuning.Defaults(), Events: rec}, st, rec
}

func TestDecayToward(t *testing.T) {
	if DecayToward(5, 2) != 3 || DecayToward(1, 2) != 0 || DecayToward(-5, 2) != -3 || DecayToward(-1, 2) != 0 {
		t.Fatalf("decay must move toward zero without crossing it")
	}
}

func TestDecayReputation(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	if err := st.SaveCharacter(ctx, &model.Character{ID: "c", Reputation: map[string]int{"ash": 3, "brine": -1}}); err != nil {
		t.Fatal(err)
	}
	n, err := svc.DecayReputation(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DecayReputation: n=%d err=%v", n, err)
	}
	c, _ := st.GetCharacter(ctx, "c")
	if c.Reputation["ash"] != 2 {
		t.Fatalf("ash should decay to 2, got %d", c.Reputation["ash"])
	}
	if _, ok := c.Reputation["brine"]; ok {
		t.Fatalf("brine should reach 0 and be dropped")
	}
}

func TestLoansRepayOrDefault(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()
	for _, c := range []*model.Character{
		{ID: "bank", Gold: 0},
		{ID: "rich", Gold: 1000},
		{ID: "poor", Gold: 50},
	} {
		if err := st.SaveCharacter(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []*model.Loan{
		{ID: "l-rich", LenderID: "bank", BorrowerID: "rich", TownID: "ash", Balance: 100, DailyRatePct: 10, DueAt: t0, Status: model.LoanActive},
		{ID: "l-poor", LenderID: "bank", BorrowerID: "poor", TownID: "ash", Balance: 100, DailyRatePct: 10, DueAt: t0, Status: model.LoanActive},
		{ID: "l-later", LenderID: "bank", BorrowerID: "poor", Balance: 100, DueAt: t0.Add(48 * time.Hour), Status: model.LoanActive},
	} {
		if err := st.SaveLoan(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.ProcessLoans(ctx, t0)
	if err != nil {
		t.Fatalf("ProcessLoans: %v", err)
	}
	if rep.Accrued != 3 || rep.Repaid != 1 || rep.Defaulted != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	bank, _ := st.GetCharacter(ctx, "bank")
	if bank.Gold != 160 {
		t.Fatalf("bank should collect 110+50, got %d", bank.Gold)
	}
	poor, _ := st.GetCharacter(ctx, "poor")
	if poor.Gold != 0 || poor.Reputation["ash"] != -10 {
		t.Fatalf("poor borrower: %+v", poor)
	}
	later, _ := st.GetLoan(ctx, "l-later")
	if later.Status != model.LoanActive || later.Balance != 101 {
		t.Fatalf("default 1%% rate should accrue 1, got %+v", later)
	}
	if rec.Count(events.LoanDefaulted) != 1 {
		t.Fatalf("expected one default event")
	}
}

func TestNPCIncomeAndRegeneration(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	if err := st.SaveCharacter(ctx, &model.Character{ID: "boss", Gold: 5}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveNPC(ctx, &model.NPC{ID: "n1", EmployerID: "boss", TownID: "ash", DailyIncome: 7}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveNPC(ctx, &model.NPC{ID: "n2", EmployerID: "ghost", TownID: "ash", DailyIncome: 7}); err != nil {
		t.Fatal(err)
	}
	total, err := svc.AccrueNPCIncome(ctx)
	if err != nil || total != 7 {
		t.Fatalf("AccrueNPCIncome: total=%d err=%v", total, err)
	}
	boss, _ := st.GetCharacter(ctx, "boss")
	if boss.Gold != 12 {
		t.Fatalf("expected 12 gold, got %d", boss.Gold)
	}

	if err := st.SaveResource(ctx, &model.Resource{ID: "r", NodeID: "n", Remaining: 8, Max: 10, RegenPerDay: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RegenerateResources(ctx); err != nil {
		t.Fatal(err)
	}
	r, _ := st.GetResource(ctx, "r")
	if r.Remaining != 10 {
		t.Fatalf("regeneration should cap at max, got %d", r.Remaining)
	}
}

func TestLoanWithMissingBorrowerDoesNotStallOthers(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	for _, c := range []*model.Character{{ID: "bank"}, {ID: "rich", Gold: 1000}} {
		if err := st.SaveCharacter(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []*model.Loan{
		{ID: "l-ghost", LenderID: "bank", BorrowerID: "ghost", Balance: 100, DailyRatePct: 10, DueAt: t0, Status: model.LoanActive},
		{ID: "l-rich", LenderID: "bank", BorrowerID: "rich", Balance: 100, DailyRatePct: 10, DueAt: t0, Status: model.LoanActive},
	} {
		if err := st.SaveLoan(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.ProcessLoans(ctx, t0)
	if err == nil {
		t.Fatalf("the loan without a borrower should be reported")
	}
	if rep.Accrued != 1 || rep.Interest != 10 || rep.Repaid != 1 || rep.Failed != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	bank, _ := st.GetCharacter(ctx, "bank")
	if bank.Gold != 110 {
		t.Fatalf("bank should collect 110, got %d", bank.Gold)
	}
	ghost, _ := st.GetLoan(ctx, "l-ghost")
	if ghost.Status != model.LoanActive || ghost.Balance != 100 {
		t.Fatalf("failed loan must be left untouched, got %+v", ghost)
	}
}

func TestDecayReputationSkipsUnwritableCharacter(t *testing.T) {
	st, path := storetest.OpenFile(t)
	svc := &Service{Store: st, Tuning: tuning.Defaults()}
	ctx := context.Background()
	for _, c := range []*model.Character{
		{ID: "a", Reputation: map[string]int{"ash": 3}},
		{ID: "b", Reputation: map[string]int{"ash": 3}},
	} {
		if err := st.SaveCharacter(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	storetest.RejectWrites(t, path, "characters", "id", "a")

	n, err := svc.DecayReputation(ctx)
	if err == nil || n != 1 {
		t.Fatalf("DecayReputation: n=%d err=%v", n, err)
	}
	b, _ := st.GetCharacter(ctx, "b")
	if b.Reputation["ash"] != 2 {
		t.Fatalf("b should still decay, got %d", b.Reputation["ash"])
	}
}
