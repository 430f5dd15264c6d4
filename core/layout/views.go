package layout

import "time"

type (
	// Placement is a span positioned on a timeline.
	// Rect is relative to the span's day column; GridRect to the whole grid (equal to Rect on a day view).
	Placement struct {
		Span     Span `json:"span"`
		Column   int  `json:"column"`
		Lane     int  `json:"lane"`
		Lanes    int  `json:"lanes"`
		Rect     Rect `json:"rect"`
		GridRect Rect `json:"grid_rect"`
	}

	DayView struct {
		Date       time.Time   `json:"date"`
		Window     Range       `json:"window"`
		Placements []Placement `json:"placements"`
	}

	WeekView struct {
		Range Range     `json:"range"`
		Days  []DayView `json:"days"`
	}

	// Badge is a span listed in a month cell; Lane orders overlapping badges.
	Badge struct {
		Span  Span `json:"span"`
		Lane  int  `json:"lane"`
		Lanes int  `json:"lanes"`
	}

	Cell struct {
		Date    time.Time `json:"date"`
		InMonth bool      `json:"in_month"`
		Badges  []Badge   `json:"badges"`
	}

	MonthOptions struct {
		WeekStart time.Weekday
		// ShowAdjacent fills the cells of the previous and next months.
		// They are left empty by default.
		ShowAdjacent bool
	}

	MonthView struct {
		Month time.Time `json:"month"`
		Range Range     `json:"range"`
		Weeks [][]Cell  `json:"weeks"`
	}
)

// Day lays out the spans visible during the business hours of day.
// Spans are clipped to the window and stretched to w.MinDuration before lanes are assigned,
// so lanes follow what is actually drawn.
func Day(spans []Span, day time.Time, w Window) DayView {
	w = w.Valid()
	d := StartOfDay(day)
	bh := w.BusinessHours(d)

	visible := FilterRange(spans, bh)
	drawn := make([]Span, len(visible))
	for i, s := range visible {
		drawn[i] = stretch(bh.Clip(s), w.MinDuration, bh)
	}

	placements := make([]Placement, 0, len(visible))
	for _, slot := range Assign(drawn) {
		ds := drawn[slot.Index]
		rect := w.Place(HourOf(ds.Start, d), HourOf(ds.End, d), slot.Lane, slot.Lanes)
		placements = append(placements, Placement{
			Span:     visible[slot.Index],
			Lane:     slot.Lane,
			Lanes:    slot.Lanes,
			Rect:     rect,
			GridRect: rect,
		})
	}
	return DayView{Date: d, Window: bh, Placements: placements}
}

// Week lays out the week holding ref, one Day per column.
func Week(spans []Span, ref time.Time, weekStart time.Weekday, w Window) WeekView {
	r := WeekRange(ref, weekStart)
	days := r.Days()
	candidates := FilterTimeline(FilterRange(spans, r), days, w.Valid())

	view := WeekView{Range: r, Days: make([]DayView, 0, len(days))}
	for col, d := range days {
		dv := Day(candidates, d, w)
		for i := range dv.Placements {
			dv.Placements[i].Column = col
			dv.Placements[i].GridRect = dv.Placements[i].Rect.InColumn(col, len(days))
		}
		view.Days = append(view.Days, dv)
	}
	return view
}

// Month lays out the month holding ref on a grid of full weeks.
func Month(spans []Span, ref time.Time, opts MonthOptions) MonthView {
	mr := MonthRange(ref)
	grid := MonthGrid(ref, opts.WeekStart)
	candidates := FilterRange(spans, grid)

	view := MonthView{Month: mr.Start, Range: grid}
	var week []Cell
	for _, d := range grid.Days() {
		cell := Cell{Date: d, InMonth: d.Month() == mr.Start.Month(), Badges: []Badge{}}
		if cell.InMonth || opts.ShowAdjacent {
			cell.Badges = badges(candidates, DayRange(d))
		}
		week = append(week, cell)
		if len(week) == 7 {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}
	return view
}

func badges(spans []Span, day Range) []Badge {
	inDay := FilterRange(spans, day)
	clipped := make([]Span, len(inDay))
	for i, s := range inDay {
		clipped[i] = day.Clip(s)
	}

	out := make([]Badge, 0, len(inDay))
	for _, slot := range Assign(clipped) {
		out = append(out, Badge{Span: inDay[slot.Index], Lane: slot.Lane, Lanes: slot.Lanes})
	}
	return out
}

// stretch makes s at least minHours long, shifting it back when it would leave r.
func stretch(s Span, minHours float64, r Range) Span {
	minDur := hours(minHours)
	if s.End.Sub(s.Start) >= minDur {
		return s
	}
	s.End = s.Start.Add(minDur)
	if s.End.After(r.End) {
		s.End = r.End
		s.Start = r.End.Add(-minDur)
	}
	return s
}
