package layout

import (
	"sort"
	"time"
)

// Slot is the lane assigned to spans[Index] by Assign.
// Lanes is the number of lanes used by the overlap cluster the span belongs to.
type Slot struct {
	Index int
	Lane  int
	Lanes int
}

// order returns the indices of spans sorted by start, then end, then input order.
func order(spans []Span) []int {
	idxs := make([]int, len(spans))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		a, b := spans[idxs[i]].normalized(), spans[idxs[j]].normalized()
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})
	return idxs
}

// lanesOf places the (sorted) idxs in the first lane where no member overlaps them.
func lanesOf(spans []Span, idxs []int) [][]int {
	lanes := make([][]int, 0)
	for _, idx := range idxs {
		placed := false
		for l, lane := range lanes {
			if fits(spans, lane, idx) {
				lanes[l] = append(lane, idx)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, []int{idx})
		}
	}
	return lanes
}

func fits(spans []Span, lane []int, idx int) bool {
	for _, member := range lane {
		if Overlaps(spans[member], spans[idx]) {
			return false
		}
	}
	return true
}

// clustersOf splits the (sorted) idxs in groups of transitively overlapping spans.
func clustersOf(spans []Span, idxs []int) [][]int {
	clusters := make([][]int, 0)
	var current []int
	var clusterEnd time.Time
	for _, idx := range idxs {
		s := spans[idx].normalized()
		if len(current) > 0 && s.Start.Before(clusterEnd) {
			current = append(current, idx)
			if s.End.After(clusterEnd) {
				clusterEnd = s.End
			}
			continue
		}
		if len(current) > 0 {
			clusters = append(clusters, current)
		}
		current = []int{idx}
		clusterEnd = s.End
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

func collect(spans []Span, groups [][]int) [][]Span {
	out := make([][]Span, len(groups))
	for g, idxs := range groups {
		out[g] = make([]Span, len(idxs))
		for i, idx := range idxs {
			out[g][i] = spans[idx]
		}
	}
	return out
}

// GroupLanes partitions spans into lanes of non-overlapping spans.
// Spans are taken by ascending start and put in the first lane with no overlapping member,
// a new lane being opened when none fits (greedy first-fit).
func GroupLanes(spans []Span) [][]Span {
	return collect(spans, lanesOf(spans, order(spans)))
}

// Clusters partitions spans into groups of transitively overlapping spans, by ascending start.
func Clusters(spans []Span) [][]Span {
	return collect(spans, clustersOf(spans, order(spans)))
}

// Assign gives every span a lane within its overlap cluster.
// Slots are returned by ascending start.
func Assign(spans []Span) []Slot {
	slots := make([]Slot, 0, len(spans))
	for _, cluster := range clustersOf(spans, order(spans)) {
		lanes := lanesOf(spans, cluster)
		for l, lane := range lanes {
			for _, idx := range lane {
				slots = append(slots, Slot{Index: idx, Lane: l, Lanes: len(lanes)})
			}
		}
	}
	pos := make(map[int]int, len(spans))
	for i, idx := range order(spans) {
		pos[idx] = i
	}
	sort.SliceStable(slots, func(i, j int) bool { return pos[slots[i].Index] < pos[slots[j].Index] })
	return slots
}
