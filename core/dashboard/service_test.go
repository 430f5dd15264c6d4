package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/dashboard"
	inmemdb "github.com/trezcool/dashboard/storage/database/inmem"
	"github.com/trezcool/dashboard/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_Finance(t *testing.T) {
	repo := inmemdb.NewBusinessRepository(inmemdb.Open())
	svc := dashboard.NewService(repo, core.NewTestConfig())

	acme := testutil.CreateEntity(t, repo, "Acme", "client", 1e7)
	globex := testutil.CreateEntity(t, repo, "Globex", "client", 5e5)

	testutil.CreateMilestone(t, repo, acme, "advance", 300000, date(2024, 5, 1), business.StatusReceived)
	testutil.CreateMilestone(t, repo, acme, "delivery", 200000, date(2025, 2, 1), business.StatusPending)
	testutil.CreateMilestone(t, repo, globex, "advance", 100000, date(2024, 1, 10), business.StatusReceived)
	testutil.CreateMilestone(t, repo, globex, "final", 50000, date(2025, 6, 1), business.StatusPending)

	t.Run("all time", func(t *testing.T) {
		fin, err := svc.Finance(context.Background(), "")
		require.NoError(t, err)

		assert.Equal(t, "", fin.FiscalYear)
		assert.Equal(t, dashboard.Amount{Value: 10500000, Label: "₹1.05 Cr"}, fin.Totals.ContractValue)
		assert.Equal(t, dashboard.Amount{Value: 400000, Label: "₹4.00 L"}, fin.Totals.Received)
		assert.Equal(t, dashboard.Amount{Value: 250000, Label: "₹2.50 L"}, fin.Totals.Pending)
		assert.Equal(t, 2, fin.Totals.Entities)
		assert.Equal(t, 4, fin.Totals.Milestones)

		assert.Equal(t, []dashboard.Point{
			{Label: "Acme", Value: 300000, Share: 75},
			{Label: "Globex", Value: 100000, Share: 25},
		}, fin.RevenueByEntity)
		assert.Equal(t, []dashboard.Point{
			{Label: "2023-24", Value: 100000, Share: 25},
			{Label: "2024-25", Value: 300000, Share: 75},
		}, fin.RevenueByFiscalYear)
		assert.Equal(t, []dashboard.Point{
			{Label: "Acme", Value: 200000, Share: 80},
			{Label: "Globex", Value: 50000, Share: 20},
		}, fin.PendingByEntity)

		statuses := make(map[string]float64)
		for _, p := range fin.MilestonesByStatus {
			statuses[p.Label] = p.Value
		}
		assert.Equal(t, map[string]float64{business.StatusPending: 2, business.StatusReceived: 2}, statuses)
	})

	t.Run("fiscal year", func(t *testing.T) {
		fin, err := svc.Finance(context.Background(), "2024-25")
		require.NoError(t, err)

		assert.Equal(t, "2024-25", fin.FiscalYear)
		assert.Equal(t, 2, fin.Totals.Milestones)
		assert.Equal(t, 300000.0, fin.Totals.Received.Value)
		assert.Equal(t, 200000.0, fin.Totals.Pending.Value)
		assert.Equal(t, []dashboard.Point{{Label: "Acme", Value: 300000, Share: 100}}, fin.RevenueByEntity)
	})

	t.Run("invalid fiscal year", func(t *testing.T) {
		_, err := svc.Finance(context.Background(), "2024")
		assert.ErrorIs(t, err, dashboard.ErrInvalidFiscalYear)
	})
}

func TestService_Finance_empty(t *testing.T) {
	svc := dashboard.NewService(inmemdb.NewBusinessRepository(inmemdb.Open()), core.NewTestConfig())

	fin, err := svc.Finance(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "₹0.00", fin.Totals.Received.Label)
	assert.Empty(t, fin.RevenueByEntity)
	assert.Empty(t, fin.MilestonesByStatus)
}
