package structures

import (
	"context"
	"testing"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/persistence/store/storetest"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/model"
)

var t0 = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *store.Store, *events.Recorder) {
	t.Helper()
	st := storetest.Open(t)
	rec := events.NewRecorder()
	return &Service{Store: st, Events: rec}, st, rec
}

func TestConstructionRunsOneAtATime(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()
	if err := st.SaveBuilding(ctx, &model.Building{ID: "mill", OwnerID: "o", TownID: "ash", Level: 1}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*model.Construction{
		{ID: "c1", BuildingID: "mill", TargetLevel: 2, DurationDays: 1, Status: model.ConstructionPending},
		{ID: "c2", BuildingID: "mill", TargetLevel: 3, DurationDays: 2, Status: model.ConstructionPending},
	} {
		if err := st.SaveConstruction(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.AdvanceConstruction(ctx, t0)
	if err != nil || rep.Started != 1 || rep.Completed != 0 {
		t.Fatalf("day 0: rep=%+v err=%v", rep, err)
	}
	c2, _ := st.GetConstruction(ctx, "c2")
	if c2.Status != model.ConstructionPending {
		t.Fatalf("second construction must wait, got %s", c2.Status)
	}

	rep, err = svc.AdvanceConstruction(ctx, t0.Add(day))
	if err != nil || rep.Completed != 1 || rep.Started != 1 {
		t.Fatalf("day 1: rep=%+v err=%v", rep, err)
	}
	b, _ := st.GetBuilding(ctx, "mill")
	if b.Level != 2 {
		t.Fatalf("expected level 2, got %d", b.Level)
	}
	if rec.Count(events.BuildingCompleted) != 1 {
		t.Fatalf("expected one completion event")
	}
}

func TestUpkeepWarnsThenSeizes(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()
	if err := st.SaveCharacter(ctx, &model.Character{ID: "o", Gold: 5}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveBuilding(ctx, &model.Building{
		ID: "forge", OwnerID: "o", TownID: "ash", Level: 1, UpkeepPerDay: 5, UpkeepDueAt: t0,
		Policy: model.UpkeepPolicy{WarnAfterDays: 2, SeizeAfterDays: 3},
	}); err != nil {
		t.Fatal(err)
	}

	want := []UpkeepReport{
		{Charged: 1},
		{Late: 1},
		{Late: 1, Warnings: 1},
		{Late: 1, Seized: 1},
		{},
	}
	for i, w := range want {
		rep, err := svc.ApplyUpkeep(ctx, t0.Add(time.Duration(i)*day))
		if err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
		if rep != w {
			t.Fatalf("day %d: got %+v want %+v", i, rep, w)
		}
	}
	b, _ := st.GetBuilding(ctx, "forge")
	if !b.Seized || b.DelinquentDays != 3 {
		t.Fatalf("expected seized after 3 missed days, got %+v", b)
	}
	owner, _ := st.GetCharacter(ctx, "o")
	if owner.Gold != 0 {
		t.Fatalf("first payment should be charged, gold=%d", owner.Gold)
	}
	if rec.Count(events.BuildingUpkeepWarning) != 1 || rec.Count(events.BuildingSeized) != 1 {
		t.Fatalf("unexpected events %+v", rec.Events())
	}
}

func TestUpkeepSkipsBuildingWithMissingOwner(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	if err := st.SaveCharacter(ctx, &model.Character{ID: "rich", Gold: 1000}); err != nil {
		t.Fatal(err)
	}
	for _, b := range []*model.Building{
		{ID: "a-orphan", OwnerID: "gone", TownID: "ash", Level: 1, UpkeepPerDay: 10, UpkeepDueAt: t0},
		{ID: "b-mill", OwnerID: "rich", TownID: "ash", Level: 1, UpkeepPerDay: 10, UpkeepDueAt: t0},
	} {
		if err := st.SaveBuilding(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 3; i++ {
		rep, err := svc.ApplyUpkeep(ctx, t0.Add(time.Duration(i)*day))
		if err == nil {
			t.Fatalf("day %d: the orphaned building should be reported", i)
		}
		if rep.Charged != 1 || rep.Failed != 1 {
			t.Fatalf("day %d: got %+v", i, rep)
		}
	}
	rich, _ := st.GetCharacter(ctx, "rich")
	if rich.Gold != 970 {
		t.Fatalf("mill should be charged every day, gold=%d", rich.Gold)
	}
}

func TestConstructionSkipsBrokenRecord(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()
	if err := st.SaveBuilding(ctx, &model.Building{ID: "mill", OwnerID: "o", TownID: "ash", Level: 1}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*model.Construction{
		{ID: "c-lost", BuildingID: "razed", TargetLevel: 2, Status: model.ConstructionInProgress, CompletesAt: t0},
		{ID: "c-mill", BuildingID: "mill", TargetLevel: 2, Status: model.ConstructionInProgress, CompletesAt: t0},
	} {
		if err := st.SaveConstruction(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := svc.AdvanceConstruction(ctx, t0)
	if err == nil || rep.Completed != 1 || rep.Failed != 1 {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
	b, _ := st.GetBuilding(ctx, "mill")
	if b.Level != 2 {
		t.Fatalf("mill should still complete, level=%d", b.Level)
	}
}

func TestClassify(t *testing.T) {
	if Classify(0, 2, 3) != UpkeepPaid || Classify(1, 2, 3) != UpkeepLate ||
		Classify(2, 2, 3) != UpkeepWarning || Classify(5, 2, 3) != UpkeepSeized {
		t.Fatalf("classification mismatch")
	}
	if Classify(9, 0, 0) != UpkeepLate {
		t.Fatalf("zero thresholds must never warn or seize")
	}
}
