package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{500, "₹500.00"},
		{999.994, "₹999.99"},
		{1500, "₹1.50 K"},
		{250000, "₹2.50 L"},
		{12500000, "₹1.25 Cr"},
		{-250000, "-₹2.50 L"},
		{-0.001, "₹0.00"},
		{999.999, "₹1.00 K"},
		{99999.999, "₹1.00 L"},
		{9999999.996, "₹1.00 Cr"},
		{-99999.999, "-₹1.00 L"},
		{123456789, "₹12.35 Cr"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatAmount(tc.amount))
		})
	}
}

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), "2024-25"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2023-24"},
		{time.Date(2099, 12, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tc := range tests {
		t.Run(tc.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tc.want, FiscalYear(tc.date))
		})
	}
}

func TestFiscalYearRange(t *testing.T) {
	from, to, err := FiscalYearRange("2024-25", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, "2024-25", FiscalYear(from))
	assert.Equal(t, "2025-26", FiscalYear(to))

	for _, fy := range []string{"", "2024", "2024-26", "2024-2025", "24-25", "abcd-ef"} {
		_, _, err := FiscalYearRange(fy, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidFiscalYear, fy)
	}
}
