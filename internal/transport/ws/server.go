package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"realmtick.io/internal/sim/events"
)

const ProtocolVersion = 1

// Server fans world events out to websocket subscribers. It implements
// events.Emitter; a subscriber whose queue is full misses the event rather
// than stalling the tick.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*subscriber
	dropped atomic.Int64
}

type subscriber struct {
	filter map[string]bool
	out    chan []byte
}

func (s *subscriber) wants(name string) bool {
	return len(s.filter) == 0 || s.filter[name]
}

type Welcome struct {
	Type            string   `json:"type"`
	ProtocolVersion int      `json:"protocol_version"`
	Events          []string `json:"events,omitempty"`
}

type Message struct {
	Type    string    `json:"type"`
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		log:  logger,
		subs: map[uint64]*subscriber{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Emit implements events.Emitter.
func (s *Server) Emit(name string, payload any) {
	b, err := json.Marshal(Message{Type: "EVENT", Name: name, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		s.log.Printf("ws encode %s: %v", name, err)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if !sub.wants(name) {
			continue
		}
		select {
		case sub.out <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

var _ events.Emitter = (*Server)(nil)

func (s *Server) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Dropped counts events skipped because a subscriber queue was full.
func (s *Server) Dropped() int64 { return s.dropped.Load() }

func (s *Server) subscribe(filter map[string]bool, queue int) (uint64, *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sub := &subscriber{filter: filter, out: make(chan []byte, queue)}
	s.subs[s.nextID] = sub
	return s.nextID, sub
}

func (s *Server) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Handler upgrades the request. The optional events query parameter is a
// comma-separated list of event names to receive; queue sets the buffer size.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		filter, names := parseFilter(r.URL.Query().Get("events"))
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, sub := s.subscribe(filter, 64)
		defer s.unsubscribe(id)

		if err := writeJSON(conn, Welcome{Type: "WELCOME", ProtocolVersion: ProtocolVersion, Events: names}); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-sub.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop only notices the peer going away.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func parseFilter(raw string) (map[string]bool, []string) {
	var names []string
	filter := map[string]bool{}
	for _, n := range strings.Split(raw, ",") {
		n = strings.TrimSpace(n)
		if n == "" || filter[n] {
			continue
		}
		filter[n] = true
		names = append(names, n)
	}
	return filter, names
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
