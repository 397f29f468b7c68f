// Package daygroup classifies a chat timeline into calendar-day buckets.
//
// Everything here is pure: results depend only on the arguments, so the same
// labels are produced wherever the timeline is rendered.
package daygroup

import (
	"time"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

const (
	Today     = "Today"
	Yesterday = "Yesterday"

	// DateLayout is used for messages older than a week.
	DateLayout = "January 2, 2006"
)

// Label returns the day bucket of ts relative to now, both read in loc.
//
// Same calendar day is "Today", the previous one "Yesterday", two to six
// days back the weekday name, anything else the full date.
func Label(ts, now time.Time, loc *time.Location) string {
	loc = orUTC(loc)
	ts = ts.In(loc)

	switch days := daysBetween(ts, now.In(loc)); {
	case days == 0:
		return Today
	case days == 1:
		return Yesterday
	case days > 1 && days < 7:
		return ts.Weekday().String()
	default:
		return ts.Format(DateLayout)
	}
}

// ShowDivider reports whether a day divider goes above current. previous is
// nil for the first message of the timeline.
func ShowDivider(current time.Time, previous *time.Time, loc *time.Location) bool {
	if previous == nil {
		return true
	}

	loc = orUTC(loc)
	return !sameDay(current.In(loc), previous.In(loc))
}

// Annotate returns a copy of msgs with DayGroup and ShowDayDivider set.
// Values already present are kept as they are. msgs must be ordered
// oldest to newest; the divider of a message is decided against the
// message right before it.
func Annotate(msgs []model.ChatMessage, now time.Time, loc *time.Location) []model.ChatMessage {
	out := make([]model.ChatMessage, len(msgs))

	var prev *time.Time
	for i, m := range msgs {
		if m.DayGroup == nil {
			label := Label(m.CreatedAt, now, loc)
			m.DayGroup = &label
		}

		if m.ShowDayDivider == nil {
			show := ShowDivider(m.CreatedAt, prev, loc)
			m.ShowDayDivider = &show
		}

		createdAt := msgs[i].CreatedAt
		prev = &createdAt
		out[i] = m
	}

	return out
}

// daysBetween counts calendar days from a to b. Both must be in the same
// location. Dates are rebuilt at UTC midnight so DST shifts do not leak
// into the count.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	return int(bd.Sub(ad).Hours() / 24)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}

	return loc
}
