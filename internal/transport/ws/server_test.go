package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"realmtick.io/internal/sim/events"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var w Welcome
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&w); err != nil || w.Type != "WELCOME" {
		t.Fatalf("welcome: %+v err=%v", w, err)
	}
	return conn
}

func TestServerDeliversFilteredEvents(t *testing.T) {
	hub := NewServer(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	all := dial(t, srv, "")
	ticks := dial(t, srv, "?events="+events.TickComplete)

	hub.Emit(events.TravelArrived, map[string]string{"plan_id": "p1"})
	hub.Emit(events.TickComplete, map[string]int{"failed": 0})

	for _, want := range []string{events.TravelArrived, events.TickComplete} {
		var m Message
		_ = all.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := all.ReadJSON(&m); err != nil || m.Name != want {
			t.Fatalf("unfiltered: got %+v err=%v want %s", m, err, want)
		}
	}

	_ = ticks.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ticks.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Name != events.TickComplete {
		t.Fatalf("filtered subscriber got %s err=%v", raw, err)
	}
}

func TestEmitDropsWhenQueueFull(t *testing.T) {
	hub := NewServer(nil)
	_, sub := hub.subscribe(nil, 1)
	hub.Emit("a", nil)
	hub.Emit("b", nil)
	if len(sub.out) != 1 || hub.Dropped() != 1 {
		t.Fatalf("queued=%d dropped=%d", len(sub.out), hub.Dropped())
	}
}
