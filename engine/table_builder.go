package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from any Rows
// ============================================================================

// BuildTable produces a row-per-observation table. The summary counts records,
// countries and the year span; GDP is not totalled since rows span several
// years.
func BuildTable(title string, rows Rows) *TableData {
	columns := []Column{
		{Key: "country", Label: "Country", Type: "text", Align: "left"},
		{Key: "year", Label: "Year", Type: "number", Align: "center"},
		{Key: "gdp", Label: "GDP", Type: "currency", Align: "right"},
	}

	if rows.Len() == 0 {
		return &TableData{
			Title:   title,
			Columns: columns,
			Rows:    [][]string{},
		}
	}

	out := make([][]string, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		o := rows.At(i)
		out = append(out, []string{
			o.Country,
			strconv.Itoa(o.Year),
			strconv.FormatFloat(o.GDP, 'f', -1, 64),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
		Summary: &Summary{
			Label: fmt.Sprintf("%d records", rows.Len()),
			Values: map[string]string{
				"country": fmt.Sprintf("%d countries", len(UniqueCountries(rows))),
				"year":    yearSpan(rows),
			},
		},
	}
}

func yearSpan(rows Rows) string {
	min, max := rows.At(0).Year, rows.At(0).Year
	for i := 1; i < rows.Len(); i++ {
		y := rows.At(i).Year
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return FormatYearRange(min, max)
}
