package dashboard

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const currencySymbol = "₹"

// amountUnits go from the smallest to the largest.
var amountUnits = []struct {
	size   float64
	suffix string
}{
	{1, ""},
	{1e3, "K"},
	{1e5, "L"},
	{1e7, "Cr"},
}

// FormatAmount renders an amount in crores, lakhs or thousands with 2 decimals, e.g. ₹1.25 Cr.
func FormatAmount(amount float64) string {
	amount = SafeNumber(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	i := 0
	for i+1 < len(amountUnits) && amount >= amountUnits[i+1].size {
		i++
	}
	value := Round(amount/amountUnits[i].size, 2)
	// rounding may reach the next unit, e.g. 99999.999 is 1.00 L rather than 100.00 K
	if i+1 < len(amountUnits) && value >= amountUnits[i+1].size/amountUnits[i].size {
		i++
		value = Round(amount/amountUnits[i].size, 2)
	}

	if value == 0 {
		sign = ""
	}
	if amountUnits[i].suffix == "" {
		return fmt.Sprintf("%s%s%.2f", sign, currencySymbol, value)
	}
	return fmt.Sprintf("%s%s%.2f %s", sign, currencySymbol, value, amountUnits[i].suffix)
}

// FiscalYearStart is the first month of a fiscal year.
const FiscalYearStart = time.April

var ErrInvalidFiscalYear = errors.New("invalid fiscal year")

// FiscalYear returns the label of the April-March fiscal year holding t, e.g. "2024-25".
func FiscalYear(t time.Time) string {
	y := t.Year()
	if t.Month() < FiscalYearStart {
		y--
	}
	return fmt.Sprintf("%d-%02d", y, (y+1)%100)
}

// FiscalYearRange returns the first day of the fiscal year labelled fy and the first day of the next one.
func FiscalYearRange(fy string, loc *time.Location) (time.Time, time.Time, error) {
	var start, end int
	if n, err := fmt.Sscanf(fy, "%4d-%2d", &start, &end); err != nil || n != 2 || len(fy) != 7 {
		return time.Time{}, time.Time{}, ErrInvalidFiscalYear
	}
	if (start+1)%100 != end {
		return time.Time{}, time.Time{}, ErrInvalidFiscalYear
	}
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(start, FiscalYearStart, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0), nil
}
