package layout

import (
	"math"
	"time"
)

// Window is the visible part of a day on the day and week timelines.
type Window struct {
	StartHour   float64 // e.g. 6 for 06:00
	EndHour     float64 // e.g. 22 for 22:00
	MinDuration float64 // hours; shorter items are stretched to stay visible
	Gap         float64 // percent of the column kept free on the right of each lane
}

// DefaultWindow shows business hours, 06:00 to 22:00.
var DefaultWindow = Window{StartHour: 6, EndHour: 22, MinDuration: 0.5, Gap: 1}

// Rect is a rectangle in percents of its container.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// InColumn rescales r, relative to one column, to the whole grid of cols columns.
func (r Rect) InColumn(col, cols int) Rect {
	if cols < 1 {
		return r
	}
	n := float64(cols)
	return Rect{
		Top:    r.Top,
		Height: r.Height,
		Left:   round(float64(col)*100/n + r.Left/n),
		Width:  round(r.Width / n),
	}
}

// Valid returns w, or DefaultWindow when its bounds are unusable.
func (w Window) Valid() Window {
	if w.StartHour < 0 || w.EndHour > 24 || w.EndHour <= w.StartHour {
		return DefaultWindow
	}
	if w.MinDuration < 0 {
		w.MinDuration = 0
	}
	if w.MinDuration > w.Length() {
		w.MinDuration = w.Length()
	}
	if w.Gap < 0 {
		w.Gap = 0
	}
	return w
}

// Length returns the number of visible hours.
func (w Window) Length() float64 { return w.EndHour - w.StartHour }

// BusinessHours returns the visible part of day as a time range.
// The bounds are wall clock times, so they hold on days when the clocks change.
func (w Window) BusinessHours(day time.Time) Range {
	return Range{Start: clockTime(day, w.StartHour), End: clockTime(day, w.EndHour)}
}

// clockTime returns the time of day's date showing h, as fractional hours, on the wall clock.
func clockTime(day time.Time, h float64) time.Time {
	y, m, d := day.Date()
	ns := int(math.Round(h * float64(time.Hour)))
	hour := ns / int(time.Hour)
	ns -= hour * int(time.Hour)
	minute := ns / int(time.Minute)
	ns -= minute * int(time.Minute)
	return time.Date(y, m, d, hour, minute, 0, ns, day.Location())
}

// Place maps start and end, as fractional hours of the day, to a rectangle in the window.
// Both are clamped to the window and the result is at least MinDuration tall.
// lane and lanes give the horizontal position: lanes share the width equally, minus Gap.
func (w Window) Place(start, end float64, lane, lanes int) Rect {
	w = w.Valid()
	if end < start {
		start, end = end, start
	}
	if lanes < 1 {
		lanes = 1
	}
	if lane < 0 {
		lane = 0
	} else if lane >= lanes {
		lane = lanes - 1
	}

	s, e := w.clamp(start), w.clamp(end)
	if e-s < w.MinDuration {
		e = s + w.MinDuration
		if e > w.EndHour {
			e = w.EndHour
			s = e - w.MinDuration
		}
	}

	length := w.Length()
	top := round((s - w.StartHour) / length * 100)
	bottom := round((e - w.StartHour) / length * 100)
	width := 100/float64(lanes) - w.Gap
	if width < 0 {
		width = 0
	}
	return Rect{
		Top:    top,
		Height: bottom - top,
		Left:   round(float64(lane) * 100 / float64(lanes)),
		Width:  round(width),
	}
}

func (w Window) clamp(h float64) float64 {
	return math.Max(w.StartHour, math.Min(w.EndHour, h))
}

// HourOf returns the wall clock time of t in day's location, as fractional hours of day.
// It is negative before day and beyond 24 after it.
func HourOf(t, day time.Time) float64 {
	t = t.In(day.Location())
	clock := float64(t.Hour()) + float64(t.Minute())/60 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600
	return float64(daysBetween(day, t)*24) + clock
}

// daysBetween returns the number of calendar days from a's date to b's date.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// round keeps 4 decimals, plenty for percentages.
func round(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}
