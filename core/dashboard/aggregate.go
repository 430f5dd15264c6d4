// Package dashboard reshapes rows into chart-ready series and builds the executive dashboards.
package dashboard

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// OthersLabel is the label of the point TopN folds the remaining points into.
const OthersLabel = "Others"

// Point is one entry of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"` // percent of the series total, 1 decimal
}

// SumBy groups rows by key and sums their value, keeping the order in which keys are first seen.
func SumBy[T any](rows []T, key func(T) string, value func(T) float64) []Point {
	points := make([]Point, 0)
	index := make(map[string]int)
	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(points)
			index[k] = i
			points = append(points, Point{Label: k})
		}
		points[i].Value += SafeNumber(value(row))
	}
	return points
}

// CountBy groups rows by key and counts them, keeping the order in which keys are first seen.
func CountBy[T any](rows []T, key func(T) string) []Point {
	return SumBy(rows, key, func(T) float64 { return 1 })
}

// Total sums the values of points.
func Total(points []Point) float64 {
	var total float64
	for _, p := range points {
		total += SafeNumber(p.Value)
	}
	return total
}

// Shares returns every value as a percentage of their sum, rounded to 1 decimal.
// A zero total yields zeros.
func Shares(values []float64) []float64 {
	var total float64
	for _, v := range values {
		total += SafeNumber(v)
	}
	shares := make([]float64, len(values))
	if total == 0 {
		return shares
	}
	for i, v := range values {
		shares[i] = Round(SafeNumber(v)/total*100, 1)
	}
	return shares
}

// WithShares fills the Share of every point.
func WithShares(points []Point) []Point {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	for i, s := range Shares(values) {
		points[i].Share = s
	}
	return points
}

// SafeNumber turns NaN and infinities into 0.
func SafeNumber(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseNumber parses s as a float, ignoring thousands separators.
// Missing or malformed values yield 0.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return SafeNumber(f)
}

// Round rounds f to the given number of decimals.
func Round(f float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(f*p) / p
}

// SortByValue sorts points by descending value; equal values keep their order.
func SortByValue(points []Point) []Point {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

// TopN keeps the n biggest points and folds the rest into a single OthersLabel point.
// Shares are recomputed on the result.
func TopN(points []Point, n int) []Point {
	sorted := SortByValue(append([]Point(nil), points...))
	if n < 1 || len(sorted) <= n {
		return WithShares(sorted)
	}
	others := Point{Label: OthersLabel}
	for _, p := range sorted[n:] {
		others.Value += p.Value
	}
	return WithShares(append(sorted[:n:n], others))
}
