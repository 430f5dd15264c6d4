package layout

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(placements []Placement) map[string]Placement {
	out := make(map[string]Placement, len(placements))
	for _, p := range placements {
		out[p.Span.ID] = p
	}
	return out
}

func TestDay(t *testing.T) {
	spans := []Span{
		span("A", 9, 0, 10, 0),
		span("B", 9, 30, 10, 30),
		span("C", 11, 0, 12, 0),
		span("early", 4, 0, 5, 0),
		span("dawn", 5, 0, 7, 0),
		{ID: "yesterday", Start: at(-1, 0), End: at(1, 0)},
		span("tomorrow", 30, 0, 31, 0),
	}

	view := Day(spans, at(15, 0), DefaultWindow)
	assert.Equal(t, day, view.Date)
	assert.Equal(t, Range{Start: at(6, 0), End: at(22, 0)}, view.Window)

	got := byID(view.Placements)
	require.Len(t, got, 4)
	assert.NotContains(t, got, "early")
	assert.NotContains(t, got, "yesterday")
	assert.NotContains(t, got, "tomorrow")

	a, b, c, dawn := got["A"], got["B"], got["C"], got["dawn"]
	assert.Equal(t, 2, a.Lanes)
	assert.Equal(t, 2, b.Lanes)
	assert.NotEqual(t, a.Lane, b.Lane)
	assert.InDelta(t, 49, a.Rect.Width, epsilon)
	assert.InDelta(t, 49, b.Rect.Width, epsilon)
	assert.InDelta(t, 18.75, a.Rect.Top, epsilon)
	assert.InDelta(t, 21.875, b.Rect.Top, epsilon)

	assert.Equal(t, 1, c.Lanes)
	assert.InDelta(t, 99, c.Rect.Width, epsilon)

	// clipped to the window start
	assert.Equal(t, 0.0, dawn.Rect.Top)
	assert.InDelta(t, 6.25, dawn.Rect.Height, epsilon)
	assert.Equal(t, span("dawn", 5, 0, 7, 0), dawn.Span)

	for _, p := range view.Placements {
		assert.Equal(t, p.Rect, p.GridRect)
		assert.Equal(t, 0, p.Column)
	}
}

func TestDay_empty(t *testing.T) {
	view := Day(nil, day, DefaultWindow)
	assert.NotNil(t, view.Placements)
	assert.Empty(t, view.Placements)
}

func TestDay_shortSpansTakeLanesAsDrawn(t *testing.T) {
	// both are stretched to 30 minutes, so they collide once drawn
	spans := []Span{span("A", 9, 0, 9, 0), span("B", 9, 10, 9, 20)}

	got := byID(Day(spans, day, DefaultWindow).Placements)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got["A"].Lanes)
	assert.InDelta(t, 3.125, got["A"].Rect.Height, epsilon)
	assert.InDelta(t, 3.125, got["B"].Rect.Height, epsilon)
}

func TestDay_reversedSpan(t *testing.T) {
	got := byID(Day([]Span{span("R", 10, 0, 9, 0)}, day, DefaultWindow).Placements)
	require.Contains(t, got, "R")
	assert.InDelta(t, 18.75, got["R"].Rect.Top, epsilon)
	assert.InDelta(t, 6.25, got["R"].Rect.Height, epsilon)
}

func TestDay_clocksChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks go forward at 02:00 on 2024-03-10
	for _, d := range []int{10, 11} {
		local := func(h, m int) time.Time { return time.Date(2024, time.March, d, h, m, 0, 0, ny) }
		t.Run(fmt.Sprintf("march %d", d), func(t *testing.T) {
			spans := []Span{
				{ID: "nine", Start: local(9, 0), End: local(10, 0)},
				{ID: "six", Start: local(6, 0), End: local(6, 45)},
			}
			view := Day(spans, local(12, 0), DefaultWindow)
			assert.Equal(t, Range{Start: local(6, 0), End: local(22, 0)}, view.Window)

			got := byID(view.Placements)
			require.Len(t, got, 2)
			assert.InDelta(t, 18.75, got["nine"].Rect.Top, epsilon)
			assert.InDelta(t, 6.25, got["nine"].Rect.Height, epsilon)
			assert.Equal(t, 0.0, got["six"].Rect.Top)
			assert.InDelta(t, 4.6875, got["six"].Rect.Height, epsilon)
		})
	}
}

func TestWeek(t *testing.T) {
	spans := []Span{
		span("tuesday", 9, 0, 10, 0),
		span("overnight", -4, 0, 8, 0), // monday 20:00 to tuesday 08:00
		span("night", 23, 0, 23, 30),
		{ID: "next week", Start: at(24*7, 0), End: at(24*7+1, 0)},
	}

	view := Week(spans, day, time.Sunday, DefaultWindow)
	assert.Equal(t, WeekRange(day, time.Sunday), view.Range)
	require.Len(t, view.Days, 7)
	assert.Equal(t, time.Sunday, view.Days[0].Date.Weekday())

	monday := byID(view.Days[1].Placements)
	tuesday := byID(view.Days[2].Placements)
	require.Contains(t, monday, "overnight")
	require.Contains(t, tuesday, "overnight")
	require.Contains(t, tuesday, "tuesday")

	assert.Equal(t, 1, monday["overnight"].Column)
	assert.InDelta(t, 87.5, monday["overnight"].Rect.Top, epsilon)
	assert.InDelta(t, 12.5, monday["overnight"].Rect.Height, epsilon)
	assert.InDelta(t, 0, tuesday["overnight"].Rect.Top, epsilon)

	tue := tuesday["tuesday"]
	assert.Equal(t, 2, tue.Column)
	assert.Equal(t, 1, tue.Lanes)
	assert.InDelta(t, 28.5714, tue.GridRect.Left, epsilon)
	assert.InDelta(t, 14.1429, tue.GridRect.Width, epsilon)
	assert.Equal(t, tue.Rect.Top, tue.GridRect.Top)

	for _, d := range view.Days {
		for _, p := range d.Placements {
			assert.NotEqual(t, "night", p.Span.ID)
			assert.NotEqual(t, "next week", p.Span.ID)
		}
	}
}

func TestMonth(t *testing.T) {
	// 2024-04-01 is a monday
	ref := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	crossing := Span{
		ID:    "crossing",
		Start: time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 1, 1, 0, 0, 0, time.UTC),
	}
	spans := []Span{
		crossing,
		{ID: "A", Start: time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2024, time.April, 10, 10, 0, 0, 0, time.UTC)},
		{ID: "B", Start: time.Date(2024, time.April, 10, 9, 30, 0, 0, time.UTC), End: time.Date(2024, time.April, 10, 10, 30, 0, 0, time.UTC)},
	}

	cellOn := func(t *testing.T, v MonthView, m time.Month, d int) Cell {
		for _, week := range v.Weeks {
			for _, c := range week {
				if c.Date.Month() == m && c.Date.Day() == d {
					return c
				}
			}
		}
		t.Helper()
		t.Fatalf("no cell for %s %d", m, d)
		return Cell{}
	}

	t.Run("adjacent days empty", func(t *testing.T) {
		view := Month(spans, ref, MonthOptions{WeekStart: time.Sunday})
		assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), view.Month)
		assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), view.Range.Start)
		assert.Equal(t, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC), view.Range.End)
		require.Len(t, view.Weeks, 5)
		for _, week := range view.Weeks {
			assert.Len(t, week, 7)
		}

		march31 := cellOn(t, view, time.March, 31)
		assert.False(t, march31.InMonth)
		assert.Empty(t, march31.Badges)

		april1 := cellOn(t, view, time.April, 1)
		assert.True(t, april1.InMonth)
		require.Len(t, april1.Badges, 1)
		assert.Equal(t, crossing, april1.Badges[0].Span)

		count := 0
		for _, week := range view.Weeks {
			for _, c := range week {
				for _, b := range c.Badges {
					if b.Span.ID == "crossing" {
						count++
					}
				}
			}
		}
		assert.Equal(t, 1, count)

		april10 := cellOn(t, view, time.April, 10)
		require.Len(t, april10.Badges, 2)
		assert.Equal(t, "A", april10.Badges[0].Span.ID)
		assert.Equal(t, 0, april10.Badges[0].Lane)
		assert.Equal(t, 1, april10.Badges[1].Lane)
		assert.Equal(t, 2, april10.Badges[1].Lanes)
	})

	t.Run("show adjacent days", func(t *testing.T) {
		view := Month(spans, ref, MonthOptions{WeekStart: time.Sunday, ShowAdjacent: true})
		march31 := cellOn(t, view, time.March, 31)
		require.Len(t, march31.Badges, 1)
		assert.Equal(t, "crossing", march31.Badges[0].Span.ID)
	})

	t.Run("week starting monday", func(t *testing.T) {
		view := Month(spans, ref, MonthOptions{WeekStart: time.Monday})
		assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), view.Range.Start)
		assert.Equal(t, time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC), view.Range.End)
		assert.Equal(t, time.Monday, view.Weeks[0][0].Date.Weekday())
	})
}
