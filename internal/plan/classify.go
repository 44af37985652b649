package plan

import (
	"fmt"
	"time"
)

// DateLayout is the storage format for action and task dates.
const DateLayout = "2006-01-02"

// Location is the fixed -03:00 offset all dates are interpreted in, so the
// runtime's local zone never shifts a deadline by a day.
var Location = time.FixedZone("BRT", -3*60*60)

// ParseDate parses a YYYY-MM-DD date at midnight in Location.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Today truncates now to midnight of its calendar day in Location.
func Today(now time.Time) time.Time {
	n := now.In(Location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, Location)
}

// Classify derives the delay status of a relative to the reference date.
// The end date is inclusive: an action is late only from the following day.
func Classify(a Action, now time.Time) (ProcessedAction, error) {
	end, err := ParseDate(a.EndDate)
	if err != nil {
		return ProcessedAction{}, fmt.Errorf("action %d: %w", a.ID, err)
	}

	p := ProcessedAction{Action: a, DelayStatus: DelayOnTime}
	switch {
	case a.Status == StatusDone:
		p.DelayStatus = DelayDone
	case Today(now).After(end):
		p.DelayStatus = DelayLate
	}
	return p, nil
}

// Process classifies every action, preserving order.
func Process(actions []Action, now time.Time) ([]ProcessedAction, error) {
	out := make([]ProcessedAction, 0, len(actions))
	for _, a := range actions {
		p, err := Classify(a, now)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
