package engine

import "strings"

// ============================================================================
// FILTERS — Country / year-range / comparison-year projections
// ============================================================================
// Single pass over the table per projection. Results are index views into the
// table; the table itself is never touched.
// ============================================================================

// ApplyFilters projects a table through a selection.
//
// The FilteredView keeps observations whose country is selected AND whose year
// lies in the selection's range. The YearSlice keeps observations of the
// comparison year across the full table, independent of the country and range
// filters. No selection is an error: an empty country set, an inverted range or
// a nil table all yield empty views.
func ApplyFilters(t *Table, sel FilterSelection) (FilteredView, YearSlice) {
	countries := toSet(sel.Countries)

	n := t.Len()
	filtered := make([]int, 0, n)
	slice := make([]int, 0)
	for i := 0; i < n; i++ {
		o := t.At(i)
		if countries[o.Country] && sel.YearRange.Contains(o.Year) {
			filtered = append(filtered, i)
		}
		if o.Year == sel.ComparisonYear {
			slice = append(slice, i)
		}
	}

	return FilteredView{View: newView(t, filtered)},
		YearSlice{View: newView(t, slice), Year: sel.ComparisonYear}
}

// DefaultSelection returns the initial selection for a table: the first n
// countries in lexicographic order, the table's full year range, and its
// latest year as comparison year. n <= 0 falls back to DefaultCountryCount.
func DefaultSelection(t *Table, n int) FilterSelection {
	if n <= 0 {
		n = DefaultCountryCount
	}

	countries := t.Countries()
	if len(countries) > n {
		countries = countries[:n]
	}

	sel := FilterSelection{Countries: countries}
	if min, max, ok := t.YearBounds(); ok {
		sel.YearRange = YearRange{Min: min, Max: max}
		sel.ComparisonYear = max
	}
	return sel
}

// ParseCountries cleans repeated country values (query parameters or flags).
// Names are kept whole, so "Korea, Rep." stays one country. Blank values are
// dropped; no values at all yield an empty, non-nil selection.
func ParseCountries(values []string) []string {
	countries := []string{}
	for _, c := range values {
		if c = strings.TrimSpace(c); c != "" {
			countries = append(countries, c)
		}
	}
	return countries
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
