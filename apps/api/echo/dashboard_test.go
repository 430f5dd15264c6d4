package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/dashboard"
	"github.com/trezcool/dashboard/testutil"
)

func Test_dashboardApi_finance(t *testing.T) {
	app := setup(t)

	acme := testutil.CreateEntity(t, app.bizRepo, "Acme", "client", 1e6)
	testutil.CreateMilestone(t, app.bizRepo, acme, "Advance", 400000, day(2024, time.May, 1), business.StatusReceived)
	testutil.CreateMilestone(t, app.bizRepo, acme, "Final", 600000, day(2025, time.May, 1), business.StatusPending)

	tests := []httpTest{
		{name: "staff", path: "/v1/dashboard/finance", token: app.token(t, app.staff), wantCode: http.StatusForbidden},
		{
			name:     "invalid fiscal year",
			path:     "/v1/dashboard/finance?fy=2024",
			token:    app.token(t, app.ed),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid fiscal year"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodGet
			app.run(t, tt)
		})
	}

	for _, usr := range []string{"admin", "director"} {
		t.Run(usr, func(t *testing.T) {
			token := app.token(t, app.admin)
			if usr == "director" {
				token = app.token(t, app.ed)
			}

			rec := app.run(t, httpTest{method: http.MethodGet, path: "/v1/dashboard/finance", token: token})
			var fin dashboard.Finance
			unmarshal(t, rec, &fin)
			assert.Equal(t, dashboard.Amount{Value: 1e6, Label: "₹10.00 L"}, fin.Totals.ContractValue)
			assert.Equal(t, 400000.0, fin.Totals.Received.Value)
			assert.Equal(t, 600000.0, fin.Totals.Pending.Value)
			assert.Equal(t, []dashboard.Point{{Label: "2024-25", Value: 400000, Share: 100}}, fin.RevenueByFiscalYear)
		})
	}

	t.Run("fiscal year", func(t *testing.T) {
		rec := app.run(t, httpTest{method: http.MethodGet, path: "/v1/dashboard/finance?fy=2025-26", token: app.token(t, app.ed)})
		var fin dashboard.Finance
		unmarshal(t, rec, &fin)
		assert.Equal(t, "2025-26", fin.FiscalYear)
		assert.Equal(t, 1, fin.Totals.Milestones)
		assert.Equal(t, 0.0, fin.Totals.Received.Value)
		assert.Equal(t, 600000.0, fin.Totals.Pending.Value)
	})
}
