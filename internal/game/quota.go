package game

import (
	"context"
	"time"
)

// Quota enforces the per-player daily session cap.
//
// A day is the calendar date of the quota location (the server's local zone
// unless configured otherwise), not a rolling 24h window.
type Quota struct {
	counter SessionCounter
	limit   int
	loc     *time.Location
}

// NewQuota builds a Quota. A nil loc means time.Local.
func NewQuota(counter SessionCounter, limit int, loc *time.Location) *Quota {
	if loc == nil {
		loc = time.Local
	}
	return &Quota{counter: counter, limit: limit, loc: loc}
}

// DayBounds returns [midnight, next midnight) of the calendar day containing now in loc.
func DayBounds(now time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

// DayKey returns the YYYY-MM-DD date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// StartedOn counts the sessions playerID started on the day of now.
func (q *Quota) StartedOn(ctx context.Context, playerID string, now time.Time) (int, error) {
	from, to := DayBounds(now, q.loc)
	return q.counter.CountSessionsStartedBetween(ctx, playerID, from, to)
}

// CanStart reports whether playerID may start another session today.
func (q *Quota) CanStart(ctx context.Context, playerID string, now time.Time) (bool, error) {
	n, err := q.StartedOn(ctx, playerID, now)
	if err != nil {
		return false, err
	}
	return n < q.limit, nil
}

// Remaining returns how many more sessions playerID may start today.
func (q *Quota) Remaining(ctx context.Context, playerID string, now time.Time) (int, error) {
	n, err := q.StartedOn(ctx, playerID, now)
	if err != nil {
		return 0, err
	}
	return max(0, q.limit-n), nil
}

// Location returns the zone used for day boundaries.
func (q *Quota) Location() *time.Location { return q.loc }
