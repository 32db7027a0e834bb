package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/persistence/store/storetest"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/feature/actions"
	"realmtick.io/internal/sim/feature/travel"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tick"
	"realmtick.io/internal/transport/ws"
)

func newTestApp(t *testing.T, steps ...tick.Step) (*app, *store.Store) {
	t.Helper()
	st := storetest.Open(t)
	logger := log.New(io.Discard, "", 0)
	hub := ws.NewServer(logger)
	return &app{
		store:      st,
		orch:       &tick.Orchestrator{Store: st, Steps: steps, Events: hub, Logger: logger},
		actions:    &actions.Service{Store: st, Events: events.Nop, Logger: logger},
		travel:     &travel.Service{Store: st, Events: events.Nop, Logger: logger},
		hub:        hub,
		adminToken: "secret",
		logger:     logger,
	}, st
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func TestHealthzReflectsLastTick(t *testing.T) {
	a, st := newTestApp(t)
	h := a.routes()

	if rw := do(t, h, http.MethodGet, "/healthz", "", nil); rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("never ticked: got %d", rw.Code)
	}
	if err := st.SetLastTickSuccess(context.Background(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if rw := do(t, h, http.MethodGet, "/healthz", "", nil); rw.Code != http.StatusOK {
		t.Fatalf("recent tick: got %d body=%s", rw.Code, rw.Body)
	}
}

func TestAdminTickRequiresToken(t *testing.T) {
	ran := 0
	a, _ := newTestApp(t, tick.Step{Name: "count", Run: func(ctx context.Context, now time.Time) error { ran++; return nil }})
	h := a.routes()

	if rw := do(t, h, http.MethodPost, "/admin/tick", "", nil); rw.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d", rw.Code)
	}
	rw := do(t, h, http.MethodPost, "/admin/tick", "", map[string]string{"Authorization": "Bearer secret"})
	if rw.Code != http.StatusOK {
		t.Fatalf("with token: got %d body=%s", rw.Code, rw.Body)
	}
	var res tick.TriggerResult
	if err := json.NewDecoder(rw.Body).Decode(&res); err != nil || !res.Success || ran != 1 {
		t.Fatalf("res=%+v ran=%d err=%v", res, ran, err)
	}

	runs := do(t, h, http.MethodGet, "/admin/runs?limit=5", "", map[string]string{"Authorization": "Bearer secret"})
	if runs.Code != http.StatusOK || !strings.Contains(runs.Body.String(), `"count"`) {
		t.Fatalf("runs: %d %s", runs.Code, runs.Body)
	}
}

func TestCollectStatusCodes(t *testing.T) {
	a, st := newTestApp(t)
	h := a.routes()
	ctx := context.Background()
	now := time.Now().UTC()
	if err := st.SaveCharacter(ctx, &model.Character{ID: "c1", Race: "HUMAN", HungerState: model.HungerFed}); err != nil {
		t.Fatal(err)
	}

	body := `{"character_id":"c1","kind":"CRAFTING"}`
	if rw := do(t, h, http.MethodPost, "/v1/actions/collect", body, nil); rw.Code != http.StatusBadRequest || !strings.Contains(rw.Body.String(), actions.CodeNoCompletedAction) {
		t.Fatalf("nothing to collect: %d %s", rw.Code, rw.Body)
	}

	if err := st.SaveAction(ctx, &model.TimedAction{
		ID: "a1", CharacterID: "c1", Kind: model.KindCrafting, Status: model.StatusCompleted,
		StartedAt: now.Add(-2 * time.Hour), CompletesAt: now.Add(-time.Hour),
		Outputs: []model.ItemGrant{{TemplateID: "STEW", Name: "Stew", Category: "FOOD", Quantity: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if rw := do(t, h, http.MethodPost, "/v1/actions/collect", body, nil); rw.Code != http.StatusOK {
		t.Fatalf("first collect: %d %s", rw.Code, rw.Body)
	}
	if rw := do(t, h, http.MethodPost, "/v1/actions/collect", body, nil); rw.Code != http.StatusConflict || !strings.Contains(rw.Body.String(), actions.CodeAlreadyCollected) {
		t.Fatalf("second collect: %d %s", rw.Code, rw.Body)
	}
	if rw := do(t, h, http.MethodPost, "/v1/actions/collect", `{"character_id":"c1","kind":"FISHING"}`, nil); rw.Code != http.StatusBadRequest {
		t.Fatalf("bad kind: %d", rw.Code)
	}
}

func TestRouteLookup(t *testing.T) {
	a, st := newTestApp(t)
	h := a.routes()
	ctx := context.Background()
	for _, n := range []model.LocationNode{
		{ID: "g-a", Type: model.NodeGate, TownID: "a"},
		{ID: "w", Type: model.NodeWaypoint},
		{ID: "g-b", Type: model.NodeGate, TownID: "b"},
	} {
		n := n
		if err := st.SaveNode(ctx, &n); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range []model.NodeConnection{
		{FromNodeID: "g-a", ToNodeID: "w", Bidirectional: true},
		{FromNodeID: "w", ToNodeID: "g-b", Bidirectional: true},
	} {
		if err := st.SaveConnection(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	rw := do(t, h, http.MethodGet, "/v1/routes?from=a&to=b", "", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("route: %d %s", rw.Code, rw.Body)
	}
	var route travel.Route
	if err := json.NewDecoder(rw.Body).Decode(&route); err != nil || route.Distance != 2 {
		t.Fatalf("route=%+v err=%v", route, err)
	}
	if rw := do(t, h, http.MethodGet, "/v1/routes?from=a&to=nowhere", "", nil); rw.Code != http.StatusNotFound {
		t.Fatalf("unknown town: %d", rw.Code)
	}
}
