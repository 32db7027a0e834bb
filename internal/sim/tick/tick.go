// Package tick runs the daily world advancement: a fixed, ordered list of
// steps, each isolated so one failing step never stops the ones after it.
package tick

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/sim/events"
)

var ErrAlreadyRunning = errors.New("tick already running")

// Step is one named unit of work. Run receives the tick's start time.
type Step struct {
	Name string
	Run  func(ctx context.Context, now time.Time) error
}

type StepResult struct {
	Name       string  `json:"name"`
	Succeeded  bool    `json:"succeeded"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// TickRun is one execution of the step list. Only the report, the tick_runs
// row and the success marker outlive it.
type TickRun struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []StepResult `json:"results"`
}

func (r *TickRun) Failed() int {
	n := 0
	for _, s := range r.Results {
		if !s.Succeeded {
			n++
		}
	}
	return n
}

// ReportSink archives finished runs.
type ReportSink interface {
	WriteRun(run *TickRun) error
}

type Orchestrator struct {
	Store   *store.Store
	Steps   []Step
	Events  events.Emitter
	Reports ReportSink
	Logger  *log.Logger

	// StaleAfter defaults to 25h.
	StaleAfter time.Duration
	Now        func() time.Time
	Tracer     trace.Tracer

	mu sync.Mutex
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

func (o *Orchestrator) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return otel.Tracer("realmtick.io/internal/sim/tick")
}

// RunDailyTick executes every step in order. Step failures are recorded in the
// returned run; only failures of the orchestration itself (store unreachable,
// success marker not written, concurrent invocation) come back as an error.
//
// Running it twice on the same day advances the world twice. Callers guard
// with Scheduler.RunIfDue or an equivalent date check.
func (o *Orchestrator) RunDailyTick(ctx context.Context) (*TickRun, error) {
	if !o.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer o.mu.Unlock()

	if err := o.Store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store unreachable: %w", err)
	}

	run := &TickRun{ID: uuid.NewString(), StartedAt: o.now()}
	ctx, span := o.tracer().Start(ctx, "tick.run", trace.WithAttributes(attribute.String("tick.id", run.ID)))
	defer span.End()

	for _, step := range o.Steps {
		run.Results = append(run.Results, o.runStep(ctx, step, run.StartedAt))
	}
	run.FinishedAt = o.now()

	failed := run.Failed()
	span.SetAttributes(attribute.Int("tick.failed_steps", failed))
	events.Safe(o.Events, o.logger()).Emit(events.TickComplete, CompletePayload{
		TickID:     run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Steps:      run.Results,
		Failed:     failed,
	})
	o.logger().Printf("tick=%s steps=%d failed=%d took=%s",
		run.ID, len(run.Results), failed, run.FinishedAt.Sub(run.StartedAt))

	if o.Reports != nil {
		if err := o.Reports.WriteRun(run); err != nil {
			o.logger().Printf("tick=%s report err=%v", run.ID, err)
		}
	}
	if err := o.recordRun(ctx, run); err != nil {
		o.logger().Printf("tick=%s record err=%v", run.ID, err)
	}
	if err := o.Store.SetLastTickSuccess(ctx, run.FinishedAt); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return run, fmt.Errorf("update success marker: %w", err)
	}
	return run, nil
}

func (o *Orchestrator) recordRun(ctx context.Context, run *TickRun) error {
	payload, err := encodeRun(run)
	if err != nil {
		return err
	}
	return o.Store.RecordTickRun(ctx, store.TickRunRow{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Steps:      len(run.Results),
		Failed:     run.Failed(),
		Payload:    payload,
	})
}

// runStep invokes one step, turning both errors and panics into a failed result.
func (o *Orchestrator) runStep(ctx context.Context, step Step, now time.Time) (res StepResult) {
	start := time.Now()
	res.Name = step.Name
	ctx, span := o.tracer().Start(ctx, "tick.step", trace.WithAttributes(attribute.String("step.name", step.Name)))

	defer func() {
		if r := recover(); r != nil {
			res.Succeeded = false
			res.Error = fmt.Sprintf("panic: %v", r)
		}
		res.DurationMS = float64(time.Since(start).Microseconds()) / 1000.0
		if !res.Succeeded {
			span.SetStatus(codes.Error, res.Error)
			o.logger().Printf("step=%s err=%s", step.Name, res.Error)
		}
		span.End()
	}()

	if step.Run == nil {
		res.Error = "step has no body"
		return res
	}
	if err := step.Run(ctx, now); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Succeeded = true
	return res
}

type TriggerResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Run     *TickRun `json:"run,omitempty"`
}

// Trigger is the operator entry point. A failed step still reports success;
// only an orchestration failure does not.
func (o *Orchestrator) Trigger(ctx context.Context) TriggerResult {
	run, err := o.RunDailyTick(ctx)
	if err != nil {
		return TriggerResult{Success: false, Error: err.Error(), Run: run}
	}
	return TriggerResult{Success: true, Run: run}
}
