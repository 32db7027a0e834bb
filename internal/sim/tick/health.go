package tick

import (
	"context"
	"time"
)

const DefaultStaleAfter = 25 * time.Hour

type HealthStatus struct {
	LastSuccess *time.Time `json:"last_success,omitempty"`
	Stale       bool       `json:"stale"`
	AgeSeconds  int64      `json:"age_seconds,omitempty"`
}

// Health reports stale when no tick has succeeded within StaleAfter, or ever.
func (o *Orchestrator) Health(ctx context.Context, now time.Time) (HealthStatus, error) {
	at, ok, err := o.Store.LastTickSuccess(ctx)
	if err != nil {
		return HealthStatus{}, err
	}
	if !ok {
		return HealthStatus{Stale: true}, nil
	}
	limit := o.StaleAfter
	if limit <= 0 {
		limit = DefaultStaleAfter
	}
	age := now.Sub(at)
	return HealthStatus{
		LastSuccess: &at,
		Stale:       age > limit,
		AgeSeconds:  int64(age / time.Second),
	}, nil
}
