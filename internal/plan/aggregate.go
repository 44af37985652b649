package plan

import "math"

// StatusSlice is one bucket of the status chart.
type StatusSlice struct {
	Status     DelayStatus
	Count      int
	Percentage int
}

// GroupCount tallies delay statuses for one responsible or sector.
type GroupCount struct {
	Name   string
	Late   int
	OnTime int
	Done   int
}

func (g GroupCount) Total() int { return g.Late + g.OnTime + g.Done }

// StatusBreakdown counts actions per delay status in DelayOrder, omitting
// empty buckets.
func StatusBreakdown(actions []ProcessedAction) []StatusSlice {
	counts := make(map[DelayStatus]int, len(DelayOrder))
	for _, a := range actions {
		counts[a.DelayStatus]++
	}

	var out []StatusSlice
	for _, s := range DelayOrder {
		n := counts[s]
		if n == 0 {
			continue
		}
		out = append(out, StatusSlice{
			Status:     s,
			Count:      n,
			Percentage: int(math.Round(float64(n) * 100 / float64(len(actions)))),
		})
	}
	return out
}

// ByResponsible groups actions by responsible party, in first-seen order.
func ByResponsible(actions []ProcessedAction) []GroupCount {
	return groupBy(actions, func(a ProcessedAction) string { return a.Responsible })
}

// BySector groups actions by sector, in first-seen order.
func BySector(actions []ProcessedAction) []GroupCount {
	return groupBy(actions, func(a ProcessedAction) string { return a.Sector })
}

func groupBy(actions []ProcessedAction, keyFn func(ProcessedAction) string) []GroupCount {
	index := make(map[string]int)
	var out []GroupCount
	for _, a := range actions {
		k := keyFn(a)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, GroupCount{Name: k})
		}
		switch a.DelayStatus {
		case DelayLate:
			out[i].Late++
		case DelayOnTime:
			out[i].OnTime++
		case DelayDone:
			out[i].Done++
		}
	}
	return out
}
