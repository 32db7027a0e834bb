package tick

import (
	"context"
	"fmt"
	"log"
	"time"

	"realmtick.io/internal/persistence/store"
)

// Scheduler fires the daily tick at most once per UTC calendar date. The date
// is claimed in the store before the run, so two processes sharing a database
// cannot both advance the same day.
type Scheduler struct {
	Orchestrator *Orchestrator

	// Every is the check interval; zero means hourly.
	Every  time.Duration
	Logger *log.Logger
	Now    func() time.Time
}

func (s *Scheduler) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RunIfDue runs the tick when no tick has been claimed for now's date yet.
// The claim is rolled back only when the run never started (store unreachable
// or another run in progress). Once steps have run the claim stands, even if
// recording the success marker failed.
func (s *Scheduler) RunIfDue(ctx context.Context, now time.Time) (bool, error) {
	st := s.Orchestrator.Store
	date := now.UTC().Format(time.DateOnly)

	prev, hadPrev, err := st.GetMeta(ctx, store.MetaLastTickDate)
	if err != nil {
		return false, fmt.Errorf("read last tick date: %w", err)
	}
	claimed, err := st.ClaimTickDate(ctx, date)
	if err != nil {
		return false, fmt.Errorf("claim tick date: %w", err)
	}
	if !claimed {
		return false, nil
	}

	run, err := s.Orchestrator.RunDailyTick(ctx)
	if run == nil {
		// No step ran, so the day is still untouched.
		s.restore(ctx, prev, hadPrev)
		return false, err
	}
	if err != nil {
		// Steps have committed: the claim stands.
		s.logger().Printf("daily tick date=%s id=%s err=%v", date, run.ID, err)
		return true, err
	}
	s.logger().Printf("daily tick date=%s id=%s failed=%d", date, run.ID, run.Failed())
	return true, nil
}

func (s *Scheduler) restore(ctx context.Context, prev string, hadPrev bool) {
	// The original ctx may be the reason the run failed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	var err error
	if hadPrev {
		err = s.Orchestrator.Store.SetMeta(ctx, store.MetaLastTickDate, prev)
	} else {
		err = s.Orchestrator.Store.DeleteMeta(ctx, store.MetaLastTickDate)
	}
	if err != nil {
		s.logger().Printf("restore last tick date err=%v", err)
	}
}

// Run checks immediately and then on every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	every := s.Every
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if _, err := s.RunIfDue(ctx, s.now()); err != nil {
			s.logger().Printf("scheduled tick err=%v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
