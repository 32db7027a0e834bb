package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/persistence/store/storetest"
	"realmtick.io/internal/sim/model"
)

func TestClaimTickDateOncePerDay(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()

	ok, err := s.ClaimTickDate(ctx, "2026-03-01")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = s.ClaimTickDate(ctx, "2026-03-01")
	if err != nil || ok {
		t.Fatalf("second claim same day: ok=%v err=%v", ok, err)
	}
	ok, err = s.ClaimTickDate(ctx, "2026-02-28")
	if err != nil || ok {
		t.Fatalf("claim for an earlier day should lose: ok=%v err=%v", ok, err)
	}
	ok, err = s.ClaimTickDate(ctx, "2026-03-02")
	if err != nil || !ok {
		t.Fatalf("next day claim: ok=%v err=%v", ok, err)
	}
}

func TestActionStatusColumnIsAuthoritative(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a := &model.TimedAction{
		ID: "a1", CharacterID: "c1", Kind: model.KindGathering, Status: model.StatusInProgress,
		StartedAt: now.Add(-2 * time.Hour), CompletesAt: now.Add(-time.Minute),
	}
	if err := s.SaveAction(ctx, a); err != nil {
		t.Fatalf("SaveAction: %v", err)
	}
	n, err := s.CompleteElapsedActions(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("CompleteElapsedActions: n=%d err=%v", n, err)
	}
	got, err := s.LatestAction(ctx, "c1", model.KindGathering)
	if err != nil {
		t.Fatalf("LatestAction: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}

	first, err := s.MarkCollected(ctx, "a1")
	if err != nil || !first {
		t.Fatalf("first MarkCollected: %v %v", first, err)
	}
	second, err := s.MarkCollected(ctx, "a1")
	if err != nil || second {
		t.Fatalf("second MarkCollected should not flip: %v %v", second, err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx *store.Store) error {
		if err := tx.SaveTown(ctx, &model.Town{ID: "t1", Name: "Ashford"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := s.GetTown(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("town should not exist after rollback, got %v", err)
	}
}

func TestPerishableScanAndListingDelete(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()

	if err := s.SaveItem(ctx, &model.Item{ID: "bread", OwnerID: "c1", Category: "FOOD", Quantity: 1, DaysRemaining: model.IntPtr(2)}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveItem(ctx, &model.Item{ID: "ingot", OwnerID: "c1", Category: "METAL", Quantity: 4}); err != nil {
		t.Fatal(err)
	}
	items, err := s.ListPerishableItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "bread" {
		t.Fatalf("expected only bread to be perishable, got %+v", items)
	}

	if err := s.SaveListing(ctx, &model.MarketListing{ID: "l1", ItemID: "bread", TownID: "t1", Price: 3}); err != nil {
		t.Fatal(err)
	}
	n, err := s.DeleteListingsForItem(ctx, "bread")
	if err != nil || n != 1 {
		t.Fatalf("DeleteListingsForItem: n=%d err=%v", n, err)
	}
}

func TestLastTickSuccessRoundTrip(t *testing.T) {
	s := storetest.Open(t)
	ctx := context.Background()

	if _, ok, err := s.LastTickSuccess(ctx); err != nil || ok {
		t.Fatalf("fresh store should have no marker: ok=%v err=%v", ok, err)
	}
	at := time.Date(2026, 3, 1, 4, 5, 6, 7, time.UTC)
	if err := s.SetLastTickSuccess(ctx, at); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LastTickSuccess(ctx)
	if err != nil || !ok || !got.Equal(at) {
		t.Fatalf("LastTickSuccess: %v %v %v", got, ok, err)
	}
}
