package schema

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the shape of a wide-format GDP dataset
// ============================================================================
// A wide dataset has one identifier column (the country) and one column per
// year. The loader uses Layout to reshape rows; the describe command prints
// Config for a quick look at coverage before building dashboards.
// ============================================================================

// DefaultIDColumn is the header of the country identifier column.
const DefaultIDColumn = "Country"

// Configuration errors. A dataset failing any of these is malformed and
// cannot be loaded.
var (
	ErrMissingIDColumn     = errors.New("schema: identifier column not found")
	ErrInvalidYearColumn   = errors.New("schema: year column label is not an integer")
	ErrDuplicateYearColumn = errors.New("schema: duplicate year column")
	ErrNoYearColumns       = errors.New("schema: no year columns")
)

// Layout locates the identifier and year columns of a wide header.
type Layout struct {
	IDColumn    string       `json:"idColumn"`
	IDIndex     int          `json:"idIndex"`
	YearColumns []YearColumn `json:"yearColumns"`
}

// YearColumn is one year column of the header.
type YearColumn struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Year  int    `json:"year"`
}

// Years returns the years of the layout in header order.
func (l Layout) Years() []int {
	years := make([]int, len(l.YearColumns))
	for i, c := range l.YearColumns {
		years[i] = c.Year
	}
	return years
}

// Config describes a discovered dataset.
type Config struct {
	Name   string `json:"name"`
	Layout Layout `json:"layout"`

	Rows        int          `json:"rows"`
	Countries   int          `json:"countries"`
	Cells       int          `json:"cells"`
	Missing     int          `json:"missing"`
	Coverage    []Coverage   `json:"coverage"`
	SkippedRows []SkippedRow `json:"skippedRows,omitempty"`

	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
}

// Coverage counts reported and missing cells for one year column.
type Coverage struct {
	Year     int `json:"year"`
	Reported int `json:"reported"`
	Missing  int `json:"missing"`
}

// SkippedRow records why a data row contributes no observations.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseValue parses a GDP cell. Blank, non-numeric and non-finite values are
// reported as missing.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseYear parses a year column label.
func ParseYear(label string) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return 0, false
	}
	return y, true
}
