package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusFilter selects actions by delay status.
type StatusFilter string

const (
	FilterAll    StatusFilter = "all"
	FilterLate   StatusFilter = "late"
	FilterOnTime StatusFilter = "ontime"
	FilterDone   StatusFilter = "done"
)

// StatusFilters lists the filters in button order.
var StatusFilters = []StatusFilter{FilterAll, FilterLate, FilterOnTime, FilterDone}

func ParseStatusFilter(s string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range StatusFilters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q (want all, late, ontime or done)", s)
}

func (f StatusFilter) Label() string {
	switch f {
	case FilterLate:
		return string(DelayLate)
	case FilterOnTime:
		return string(DelayOnTime)
	case FilterDone:
		return string(DelayDone)
	}
	return "Todos"
}

// Next cycles through StatusFilters.
func (f StatusFilter) Next() StatusFilter {
	for i, known := range StatusFilters {
		if known == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return FilterAll
}

func (f StatusFilter) Matches(d DelayStatus) bool {
	switch f {
	case FilterLate:
		return d == DelayLate
	case FilterOnTime:
		return d == DelayOnTime
	case FilterDone:
		return d == DelayDone
	}
	return true
}

// Filter returns the actions matching both the status filter and the
// free-text query, in input order. An empty query matches everything.
func Filter(actions []ProcessedAction, status StatusFilter, query string) []ProcessedAction {
	needle := strings.ToLower(query)
	out := make([]ProcessedAction, 0, len(actions))
	for _, a := range actions {
		if !status.Matches(a.DelayStatus) {
			continue
		}
		if needle != "" && !matchesQuery(a, needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesQuery(a ProcessedAction, needle string) bool {
	for _, field := range []string{a.Description, a.Responsible, a.Sector, strconv.Itoa(a.ID)} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
