// Package layout positions time-ranged items on day, week and month calendar grids.
//
// Everything here is pure: callers fetch their events, turn them into Spans
// and get back lane assignments and percentage rectangles to render.
package layout

import (
	"time"
)

// Span is a time-ranged item to lay out.
type Span struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// normalized returns s with Start and End swapped when they are reversed.
func (s Span) normalized() Span {
	if s.End.Before(s.Start) {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

// Overlaps reports whether a and b share some time: a.Start < b.End && b.Start < a.End.
// Touching spans (a.End == b.Start) do not overlap.
func Overlaps(a, b Span) bool {
	a, b = a.normalized(), b.normalized()
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Range is a half-open time range [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Intersects reports whether s has some time inside r.
// A zero-length span intersects r when its instant falls inside r.
func (r Range) Intersects(s Span) bool {
	s = s.normalized()
	if s.Start.Equal(s.End) {
		return !s.Start.Before(r.Start) && s.Start.Before(r.End)
	}
	return s.Start.Before(r.End) && r.Start.Before(s.End)
}

// Clip returns s limited to r.
func (r Range) Clip(s Span) Span {
	s = s.normalized()
	if s.Start.Before(r.Start) {
		s.Start = r.Start
	}
	if s.End.After(r.End) {
		s.End = r.End
	}
	return s
}

// Days returns the midnight of every calendar day starting inside r.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := StartOfDay(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// StartOfDay returns midnight of t's day, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns the calendar day holding t.
func DayRange(t time.Time) Range {
	start := StartOfDay(t)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekRange returns the 7 days week holding t, starting on weekStart.
func WeekRange(t time.Time, weekStart time.Weekday) Range {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	start := StartOfDay(t).AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthRange returns the calendar month holding t.
func MonthRange(t time.Time) Range {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// MonthGrid returns the full weeks covering the month holding t.
func MonthGrid(t time.Time, weekStart time.Weekday) Range {
	mr := MonthRange(t)
	return Range{
		Start: WeekRange(mr.Start, weekStart).Start,
		End:   WeekRange(mr.End.AddDate(0, 0, -1), weekStart).End,
	}
}

// FilterRange returns the spans intersecting r, in input order.
func FilterRange(spans []Span, r Range) []Span {
	filtered := make([]Span, 0, len(spans))
	for _, s := range spans {
		if r.Intersects(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterTimeline returns the spans intersecting the business hours of at least one of days.
// Spans lying entirely outside business hours are dropped, not clipped.
func FilterTimeline(spans []Span, days []time.Time, w Window) []Span {
	filtered := make([]Span, 0, len(spans))
	for _, s := range spans {
		for _, d := range days {
			if w.BusinessHours(d).Intersects(s) {
				filtered = append(filtered, s)
				break
			}
		}
	}
	return filtered
}
