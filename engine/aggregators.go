package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"
)

// ============================================================================
// AGGREGATORS — Summary, ranking and trend views over Rows
// ============================================================================
// All functions are pure reads. Grouping produces index lists, not copies.
// ============================================================================

// Summarize derives the KPI figures from a table. The latest-year figures are
// computed over observations of the table's maximum year; when that subset is
// empty ErrNoLatestYearData is returned instead of a sentinel value.
func Summarize(t *Table) (SummaryStats, error) {
	min, max, ok := t.YearBounds()
	if !ok {
		return SummaryStats{}, ErrNoLatestYearData
	}

	stats := SummaryStats{
		CountryCount: len(t.Countries()),
		YearMin:      min,
		YearMax:      max,
	}

	latest := filterYear(t, max)
	if latest.Len() == 0 {
		return stats, ErrNoLatestYearData
	}
	stats.LatestYearMaxGDP = MaxGDP(latest)
	stats.LatestYearCountryCount = len(UniqueCountries(latest))
	return stats, nil
}

// TopRanked returns the observation with the highest GDP in the slice.
// Ties resolve to the earliest observation in table order.
func TopRanked(s YearSlice) (Observation, error) {
	if s.Len() == 0 {
		return Observation{}, ErrEmptySlice
	}
	top := s.At(0)
	for i := 1; i < s.Len(); i++ {
		if o := s.At(i); o.GDP > top.GDP {
			top = o
		}
	}
	return top, nil
}

// RankedDescending returns the observations sorted by GDP, highest first.
// The sort is stable, so equal values keep their table order.
func RankedDescending(rows Rows) []Observation {
	out := collect(rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GDP > out[j].GDP })
	return out
}

// TrendSeries groups observations by country, in order of first appearance,
// with each country's points ordered by year ascending.
func TrendSeries(rows Rows) []Series {
	order, grouped := groupByCountry(rows)

	series := make([]Series, 0, len(order))
	for _, country := range order {
		idx := grouped[country]
		points := make([]TrendPoint, 0, len(idx))
		for _, i := range idx {
			o := rows.At(i)
			points = append(points, TrendPoint{Year: o.Year, GDP: o.GDP})
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })
		series = append(series, Series{Country: country, Points: points})
	}
	return series
}

// ============================================================================
// GROUPING
// ============================================================================

func groupByCountry(rows Rows) ([]string, map[string][]int) {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < rows.Len(); i++ {
		key := rows.At(i).Country
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}
	return order, grouped
}

func filterYear(t *Table, year int) View {
	var idx []int
	for i := 0; i < t.Len(); i++ {
		if t.At(i).Year == year {
			idx = append(idx, i)
		}
	}
	return newView(t, idx)
}

// ============================================================================
// MEASURES
// ============================================================================

// MaxGDP returns the largest GDP across rows, or 0 for no rows.
func MaxGDP(rows Rows) float64 {
	n := rows.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := rows.At(i).GDP; v > m {
			m = v
		}
	}
	return m
}

// UniqueCountries returns distinct countries in order of first appearance.
func UniqueCountries(rows Rows) []string {
	order, _ := groupByCountry(rows)
	return order
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatCurrency renders an amount rounded to whole units with thousands
// separators, e.g. FormatCurrency(27e12, "$") == "$27,000,000,000,000".
func FormatCurrency(amount float64, symbol string) string {
	rounded := math.Round(amount)
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	if rounded < 0 {
		return "-" + symbol + humanize.Commaf(-rounded)
	}
	return symbol + humanize.Commaf(rounded)
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}

// FormatYearRange renders an inclusive year span, e.g. "2020–2025".
func FormatYearRange(min, max int) string {
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d–%d", min, max)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
