// Package events is the fire-and-forget notification surface used by tick steps.
package events

import (
	"log"
	"sync"
	"time"
)

const (
	TickComplete           = "tick.complete"
	CharacterLevelUp       = "character.level_up"
	ToolBroken             = "item.tool_broken"
	ResourceDepleted       = "resource.depleted"
	EncounterMonster       = "travel.encounter"
	EncounterPvP           = "travel.pvp"
	TravelArrived          = "travel.arrived"
	TravelHalted           = "travel.halted"
	BuildingCompleted      = "building.completed"
	BuildingUpkeepWarning  = "building.upkeep_warning"
	BuildingSeized         = "building.seized"
	ElectionCompleted      = "governance.election_completed"
	ImpeachmentResolved    = "governance.impeachment_resolved"
	LoanDefaulted          = "loan.defaulted"
	SustenanceStateChanged = "character.sustenance_changed"
	ItemsSpoiled           = "items.spoiled"
)

type Emitter interface {
	Emit(name string, payload any)
}

type Event struct {
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Func adapts a plain function to Emitter.
type Func func(name string, payload any)

func (f Func) Emit(name string, payload any) { f(name, payload) }

type nop struct{}

func (nop) Emit(string, any) {}

// Nop discards everything.
var Nop Emitter = nop{}

// Multi fans one event out to every emitter in order.
func Multi(emitters ...Emitter) Emitter {
	out := make([]Emitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return multi(out)
}

type multi []Emitter

func (m multi) Emit(name string, payload any) {
	for _, e := range m {
		e.Emit(name, payload)
	}
}

// Safe wraps e so a panicking emitter never propagates into the caller.
func Safe(e Emitter, logger *log.Logger) Emitter {
	if e == nil {
		return Nop
	}
	if logger == nil {
		logger = log.Default()
	}
	return safe{inner: e, logger: logger}
}

type safe struct {
	inner  Emitter
	logger *log.Logger
}

func (s safe) Emit(name string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("emit %s panicked: %v", name, r)
		}
	}()
	s.inner.Emit(name, payload)
}

// Logger writes one line per event.
func Logger(logger *log.Logger) Emitter {
	if logger == nil {
		logger = log.Default()
	}
	return Func(func(name string, payload any) {
		logger.Printf("event=%s payload=%+v", name, payload)
	})
}

// Recorder keeps every emitted event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func NewRecorder() *Recorder { return &Recorder{now: time.Now} }

func (r *Recorder) Emit(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.events = append(r.events, Event{Name: name, At: now().UTC(), Payload: payload})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the recorded events with the given name, oldest first.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Count(name string) int { return len(r.Named(name)) }
