package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/feature/actions"
	"realmtick.io/internal/sim/feature/travel"
	"realmtick.io/internal/sim/model"
	"realmtick.io/internal/sim/tick"
	"realmtick.io/internal/transport/ws"
)

type app struct {
	store      *store.Store
	orch       *tick.Orchestrator
	actions    *actions.Service
	travel     *travel.Service
	hub        *ws.Server
	adminToken string
	logger     *log.Logger
}

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /metrics", a.handleMetrics)
	mux.HandleFunc("POST /admin/tick", a.admin(a.handleTrigger))
	mux.HandleFunc("GET /admin/runs", a.admin(a.handleRuns))
	mux.HandleFunc("POST /v1/actions/collect", a.handleCollect)
	mux.HandleFunc("POST /v1/travel/move", a.handleMove)
	mux.HandleFunc("GET /v1/routes", a.handleRoute)
	mux.HandleFunc("GET /v1/events", a.hub.Handler())
	return mux
}

// admin requires the bearer token. Without a configured token only loopback
// callers are accepted.
func (a *app) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if a.adminToken == "" {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			next(rw, r)
			return
		}
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.adminToken)) != 1 {
			http.Error(rw, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(rw, r)
	}
}

func (a *app) handleHealth(rw http.ResponseWriter, r *http.Request) {
	h, err := a.orch.Health(r.Context(), time.Now().UTC())
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	status := http.StatusOK
	if h.Stale {
		status = http.StatusServiceUnavailable
	}
	writeJSON(rw, status, h)
}

func (a *app) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	// Minimal Prometheus exposition format.
	if h, err := a.orch.Health(r.Context(), time.Now().UTC()); err == nil {
		stale := 0
		if h.Stale {
			stale = 1
		}
		fmt.Fprintf(rw, "# HELP realmtick_tick_stale Whether the last successful tick is older than the stale window.\n")
		fmt.Fprintf(rw, "# TYPE realmtick_tick_stale gauge\n")
		fmt.Fprintf(rw, "realmtick_tick_stale %d\n", stale)
		if h.LastSuccess != nil {
			fmt.Fprintf(rw, "# HELP realmtick_tick_last_success_unix Unix timestamp of the last successful tick.\n")
			fmt.Fprintf(rw, "# TYPE realmtick_tick_last_success_unix gauge\n")
			fmt.Fprintf(rw, "realmtick_tick_last_success_unix %d\n", h.LastSuccess.Unix())
		}
	}
	if runs, err := a.store.RecentTickRuns(r.Context(), 1); err == nil && len(runs) == 1 {
		fmt.Fprintf(rw, "# HELP realmtick_tick_failed_steps Failed steps in the most recent tick.\n")
		fmt.Fprintf(rw, "# TYPE realmtick_tick_failed_steps gauge\n")
		fmt.Fprintf(rw, "realmtick_tick_failed_steps %d\n", runs[0].Failed)
	}

	fmt.Fprintf(rw, "# HELP realmtick_event_subscribers Connected event stream subscribers.\n")
	fmt.Fprintf(rw, "# TYPE realmtick_event_subscribers gauge\n")
	fmt.Fprintf(rw, "realmtick_event_subscribers %d\n", a.hub.Subscribers())

	fmt.Fprintf(rw, "# HELP realmtick_event_dropped_total Events dropped on full subscriber queues.\n")
	fmt.Fprintf(rw, "# TYPE realmtick_event_dropped_total counter\n")
	fmt.Fprintf(rw, "realmtick_event_dropped_total %d\n", a.hub.Dropped())
}

func (a *app) handleTrigger(rw http.ResponseWriter, r *http.Request) {
	// The tick outlives a dropped admin connection.
	ctx := context.WithoutCancel(r.Context())
	res := a.orch.Trigger(ctx)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
		if res.Error == tick.ErrAlreadyRunning.Error() {
			status = http.StatusConflict
		}
	}
	writeJSON(rw, status, res)
}

func (a *app) handleRuns(rw http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := a.store.RecentTickRuns(r.Context(), limit)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, "", err)
		return
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, json.RawMessage(row.Payload))
	}
	writeJSON(rw, http.StatusOK, map[string]any{"runs": out})
}

type collectRequest struct {
	CharacterID string           `json:"character_id"`
	Kind        model.ActionKind `json:"kind"`
}

func (a *app) handleCollect(rw http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CharacterID == "" {
		writeError(rw, http.StatusBadRequest, "E_BAD_REQUEST", errors.New("character_id and kind are required"))
		return
	}
	if req.Kind != model.KindGathering && req.Kind != model.KindCrafting {
		writeError(rw, http.StatusBadRequest, "E_BAD_REQUEST", fmt.Errorf("unknown kind %q", req.Kind))
		return
	}
	reward, err := a.actions.Collect(r.Context(), req.CharacterID, req.Kind)
	if err != nil {
		code := actions.Code(err)
		switch code {
		case actions.CodeAlreadyCollected:
			writeError(rw, http.StatusConflict, code, err)
		case actions.CodeNoCompletedAction, actions.CodeInProgress:
			writeError(rw, http.StatusBadRequest, code, err)
		default:
			a.logger.Printf("collect character=%s err=%v", req.CharacterID, err)
			writeError(rw, http.StatusInternalServerError, "", err)
		}
		return
	}
	writeJSON(rw, http.StatusOK, reward)
}

type moveRequest struct {
	CharacterID string `json:"character_id"`
	NodeID      string `json:"node_id"`
}

func (a *app) handleMove(rw http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CharacterID == "" || req.NodeID == "" {
		writeError(rw, http.StatusBadRequest, "E_BAD_REQUEST", errors.New("character_id and node_id are required"))
		return
	}
	res, err := a.travel.ResolveMove(r.Context(), req.CharacterID, req.NodeID)
	switch {
	case err == nil:
		writeJSON(rw, http.StatusOK, res)
	case errors.Is(err, travel.ErrIllegalMove), errors.Is(err, travel.ErrUnknownNode), errors.Is(err, travel.ErrNoPosition):
		writeError(rw, http.StatusBadRequest, "E_ILLEGAL_MOVE", err)
	case errors.Is(err, store.ErrNotFound):
		writeError(rw, http.StatusNotFound, "E_NOT_FOUND", err)
	default:
		a.logger.Printf("move character=%s err=%v", req.CharacterID, err)
		writeError(rw, http.StatusInternalServerError, "", err)
	}
}

func (a *app) handleRoute(rw http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(rw, http.StatusBadRequest, "E_BAD_REQUEST", errors.New("from and to are required"))
		return
	}
	route, err := a.travel.RouteBetweenTowns(r.Context(), from, to)
	switch {
	case err == nil:
		writeJSON(rw, http.StatusOK, route)
	case errors.Is(err, travel.ErrUnknownTown):
		writeError(rw, http.StatusNotFound, "E_UNKNOWN_TOWN", err)
	case errors.Is(err, travel.ErrUnreachable):
		writeError(rw, http.StatusNotFound, "E_UNREACHABLE", err)
	default:
		writeError(rw, http.StatusInternalServerError, "", err)
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code string, err error) {
	body := map[string]any{"error": err.Error()}
	if code != "" {
		body["code"] = code
	}
	writeJSON(rw, status, body)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
