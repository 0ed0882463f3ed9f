// Package timer provides a fixed-interval re-arming timer for periodic work
// loops.
//
// A Timer is armed at a calendar boundary (start of minute, hour or day, UTC)
// and reports elapsed intervals through Update, which callers poll at
// arbitrary frequency from their own loop. On a true result the timer re-arms
// at the current boundary, so a slow caller observes at most one tick per
// poll rather than a backlog.
package timer

import (
	"time"

	"github.com/rs/zerolog/log"
)

type unit int

const (
	minuteUnit unit = iota
	hourUnit
	dayUnit
)

// FixedUpdate describes the timer's period as a count of calendar units.
type FixedUpdate struct {
	unit  unit
	count int64
}

// Minutes builds a period of n minutes.
func Minutes(n int64) FixedUpdate { return FixedUpdate{unit: minuteUnit, count: n} }

// Hours builds a period of n hours.
func Hours(n int64) FixedUpdate { return FixedUpdate{unit: hourUnit, count: n} }

// Days builds a period of n days.
func Days(n int64) FixedUpdate { return FixedUpdate{unit: dayUnit, count: n} }

func (f FixedUpdate) duration() time.Duration {
	switch f.unit {
	case hourUnit:
		return time.Duration(f.count) * time.Hour
	case dayUnit:
		return time.Duration(f.count) * 24 * time.Hour
	default:
		return time.Duration(f.count) * time.Minute
	}
}

// floor aligns t down to the unit's calendar boundary in UTC.
func (f FixedUpdate) floor(t time.Time) time.Time {
	t = t.UTC()
	switch f.unit {
	case hourUnit:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case dayUnit:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	}
}

// Timer tracks the last armed calendar boundary for one fixed period.
//
// Timer is not safe for concurrent use; it belongs to a single polling loop.
type Timer struct {
	datetime    time.Time
	fixedUpdate FixedUpdate
	now         func() time.Time
}

// NewTimer arms a timer at the current calendar boundary for the given
// period. A timer armed with Hours(1) at 10:47 fires once 11:47 has been
// reached on the wall clock, then re-arms at 11:00.
func NewTimer(fixedUpdate FixedUpdate) *Timer {
	t := &Timer{
		fixedUpdate: fixedUpdate,
		now:         time.Now,
	}
	t.datetime = fixedUpdate.floor(t.now())
	log.Info().Time("armed", t.datetime).Msg("timer started")
	return t
}

// Update reports whether at least one full period has elapsed since the
// armed boundary, re-arming at the current boundary when it has.
func (t *Timer) Update() bool {
	now := t.now().UTC()
	if t.datetime.Add(t.fixedUpdate.duration()).After(now) {
		return false
	}

	prev := t.datetime
	t.datetime = t.fixedUpdate.floor(now)
	log.Info().Time("from", prev).Time("to", t.datetime).Msg("timer re-armed")
	return true
}

// TsMs returns the armed boundary as Unix milliseconds.
func (t *Timer) TsMs() int64 {
	return t.datetime.UnixMilli()
}
