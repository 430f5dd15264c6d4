package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/layout"
	"github.com/trezcool/dashboard/testutil"
)

func Test_calendarApi(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.ed)

	standup := testutil.CreateEvent(t, app.evtRepo, "Standup", calendar.TypeMeeting, at(4, 9), at(4, 10), "staff")
	review := testutil.CreateEvent(t, app.evtRepo, "Review", calendar.TypeMeeting, at(4, 9), at(4, 11), "staff")
	offsite := testutil.CreateEvent(t, app.evtRepo, "Offsite", calendar.TypeEvent, at(8, 8), at(9, 18), "admin")
	testutil.CreateEvent(t, app.evtRepo, "Next month", calendar.TypeOther, time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC), "admin")

	t.Run("day", func(t *testing.T) {
		rec := app.run(t, httpTest{method: http.MethodGet, path: "/v1/calendar/day?date=2024-03-04", token: token})

		var view calendar.View[layout.DayView]
		unmarshal(t, rec, &view)
		assert.True(t, view.Layout.Date.Equal(at(4, 0)))
		require.Len(t, view.Layout.Placements, 2)
		for _, p := range view.Layout.Placements {
			assert.Equal(t, 2, p.Lanes)
		}
		assert.NotEqual(t, view.Layout.Placements[0].Lane, view.Layout.Placements[1].Lane)

		require.Len(t, view.Events, 2)
		ids := []string{view.Events[0].ID, view.Events[1].ID}
		assert.ElementsMatch(t, []string{standup.ID, review.ID}, ids)
	})

	t.Run("week", func(t *testing.T) {
		rec := app.run(t, httpTest{method: http.MethodGet, path: "/v1/calendar/week?date=2024-03-06", token: token})

		var view calendar.View[layout.WeekView]
		unmarshal(t, rec, &view)
		assert.True(t, view.Layout.Range.Start.Equal(at(3, 0)))
		assert.True(t, view.Layout.Range.End.Equal(at(10, 0)))
		require.Len(t, view.Layout.Days, 7)
		assert.Len(t, view.Layout.Days[1].Placements, 2) // monday
		assert.Len(t, view.Layout.Days[5].Placements, 1) // friday
		assert.Len(t, view.Layout.Days[6].Placements, 1) // saturday
		assert.Len(t, view.Events, 3)
	})

	t.Run("month", func(t *testing.T) {
		rec := app.run(t, httpTest{method: http.MethodGet, path: "/v1/calendar/month?month=2024-03", token: token})

		var view calendar.View[layout.MonthView]
		unmarshal(t, rec, &view)
		assert.True(t, view.Layout.Month.Equal(at(1, 0)))
		require.NotEmpty(t, view.Layout.Weeks)

		var badges int
		for _, week := range view.Layout.Weeks {
			require.Len(t, week, 7)
			for _, cell := range week {
				if !cell.InMonth {
					assert.Empty(t, cell.Badges)
				}
				badges += len(cell.Badges)
			}
		}
		assert.Equal(t, 4, badges) // the offsite shows on two days
		require.Len(t, view.Events, 3)
		assert.ElementsMatch(t, []string{standup.ID, review.ID, offsite.ID},
			[]string{view.Events[0].ID, view.Events[1].ID, view.Events[2].ID})

		rec = app.run(t, httpTest{method: http.MethodGet, path: "/v1/calendar/month?month=2024-03&show_adjacent=true", token: token})
		unmarshal(t, rec, &view)
		assert.Len(t, view.Events, 4)
	})

	t.Run("invalid params", func(t *testing.T) {
		tests := []httpTest{
			{
				name:     "day",
				path:     "/v1/calendar/day?date=04/03/2024",
				wantData: []byte(`{"date":"use the format 2006-01-02"}`),
			},
			{
				name:     "month",
				path:     "/v1/calendar/month?month=March",
				wantData: []byte(`{"month":"use the format 2006-01"}`),
			},
			{
				name:     "show adjacent",
				path:     "/v1/calendar/month?show_adjacent=maybe",
				wantData: []byte(`{"show_adjacent":"must be true or false"}`),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.method = http.MethodGet
				tt.token = token
				tt.wantCode = http.StatusBadRequest
				app.run(t, tt)
			})
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		app.run(t, httpTest{
			method:   http.MethodGet,
			path:     "/v1/calendar/week",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		})
	})
}
