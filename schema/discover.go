package schema

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// LAYOUT DISCOVERY — header → identifier column + year columns
// ============================================================================
// Every column except the identifier column is a year column. A year label
// that does not parse as an integer is a configuration error: the dataset is
// malformed and nothing downstream can recover.
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	IDColumn string // Identifier column header. Default: "Country"
	Name     string // Dataset name override (otherwise "GDP Dataset")
	Source   string // Where the data came from, recorded in Config.DiscoveredFrom
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		IDColumn: DefaultIDColumn,
	}
}

// DiscoverLayout classifies header columns. The identifier column is matched
// case-insensitively after trimming whitespace.
func DiscoverLayout(headers []string, idColumn string) (*Layout, error) {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}

	layout := &Layout{IDColumn: idColumn, IDIndex: -1}
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), idColumn) {
			layout.IDIndex = i
			break
		}
	}
	if layout.IDIndex < 0 {
		return nil, fmt.Errorf("%w: %q in header %v", ErrMissingIDColumn, idColumn, headers)
	}

	seen := make(map[int]string)
	for i, h := range headers {
		if i == layout.IDIndex {
			continue
		}
		year, ok := ParseYear(h)
		if !ok {
			return nil, fmt.Errorf("%w: column %d %q", ErrInvalidYearColumn, i+1, h)
		}
		if prev, dup := seen[year]; dup {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateYearColumn, prev, h)
		}
		seen[year] = h
		layout.YearColumns = append(layout.YearColumns, YearColumn{Index: i, Label: h, Year: year})
	}

	if len(layout.YearColumns) == 0 {
		return nil, ErrNoYearColumns
	}
	return layout, nil
}

// Describe discovers the layout of a wide table and computes per-year
// coverage. rows excludes the header.
func Describe(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	layout, err := DiscoverLayout(headers, opt.IDColumn)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Name:           opt.Name,
		Layout:         *layout,
		DiscoveredFrom: opt.Source,
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "GDP Dataset"
	}

	coverage := make([]Coverage, len(layout.YearColumns))
	for i, c := range layout.YearColumns {
		coverage[i].Year = c.Year
	}

	countries := make(map[string]bool)
	for n, row := range rows {
		line := n + 2 // 1-based, after header
		country := cell(row, layout.IDIndex)
		if country == "" {
			config.SkippedRows = append(config.SkippedRows, SkippedRow{Line: line, Reason: "empty country"})
			continue
		}
		if countries[country] {
			config.SkippedRows = append(config.SkippedRows, SkippedRow{Line: line, Reason: fmt.Sprintf("duplicate country %q", country)})
			continue
		}
		countries[country] = true
		config.Rows++

		for i, c := range layout.YearColumns {
			config.Cells++
			if _, ok := ParseValue(cell(row, c.Index)); ok {
				coverage[i].Reported++
			} else {
				coverage[i].Missing++
				config.Missing++
			}
		}
	}

	config.Countries = len(countries)
	config.Coverage = coverage
	return config, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
