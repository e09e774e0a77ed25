package schema

import (
	"errors"
	"testing"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

var gdpHeaders = []string{"Country", "2020", "2021", "2022"}

var gdpRows = [][]string{
	{"Alphaland", "100", "110", ""},
	{"Betastan", "200", "n/a", "220"},
	{"Gammaria", "300", "310", "320"},
	{"", "1", "2", "3"},
	{"Alphaland", "999", "999", "999"},
}

func TestDiscoverLayout(t *testing.T) {
	layout, err := DiscoverLayout([]string{"2020", " country ", "2021"}, "Country")
	if err != nil {
		t.Fatalf("DiscoverLayout failed: %v", err)
	}
	if layout.IDIndex != 1 {
		t.Errorf("IDIndex = %d, want 1", layout.IDIndex)
	}
	years := layout.Years()
	if len(years) != 2 || years[0] != 2020 || years[1] != 2021 {
		t.Errorf("Years() = %v, want [2020 2021]", years)
	}
	if layout.YearColumns[1].Index != 2 {
		t.Errorf("second year column index = %d, want 2", layout.YearColumns[1].Index)
	}
}

func TestDiscoverLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    error
	}{
		{"missing id", []string{"Nation", "2020"}, ErrMissingIDColumn},
		{"bad year", []string{"Country", "2020", "FY21"}, ErrInvalidYearColumn},
		{"decimal year", []string{"Country", "2020.0"}, ErrInvalidYearColumn},
		{"duplicate year", []string{"Country", "2020", " 2020"}, ErrDuplicateYearColumn},
		{"no years", []string{"Country"}, ErrNoYearColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DiscoverLayout(tt.headers, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("DiscoverLayout(%v) error = %v, want %v", tt.headers, err, tt.want)
			}
		})
	}
}

func TestDescribeCoverage(t *testing.T) {
	config, err := Describe(gdpHeaders, gdpRows, DiscoverOptions{Name: "Test", Source: "inline"})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if config.Name != "Test" || config.DiscoveredFrom != "inline" {
		t.Errorf("unexpected metadata: %q from %q", config.Name, config.DiscoveredFrom)
	}
	if config.Rows != 3 || config.Countries != 3 {
		t.Errorf("Rows=%d Countries=%d, want 3/3", config.Rows, config.Countries)
	}
	if config.Cells != 9 || config.Missing != 2 {
		t.Errorf("Cells=%d Missing=%d, want 9/2", config.Cells, config.Missing)
	}

	want := []Coverage{
		{Year: 2020, Reported: 3, Missing: 0},
		{Year: 2021, Reported: 2, Missing: 1},
		{Year: 2022, Reported: 2, Missing: 1},
	}
	for i, c := range want {
		if config.Coverage[i] != c {
			t.Errorf("Coverage[%d] = %+v, want %+v", i, config.Coverage[i], c)
		}
	}

	if len(config.SkippedRows) != 2 {
		t.Fatalf("SkippedRows = %+v, want 2 entries", config.SkippedRows)
	}
	if config.SkippedRows[0].Line != 5 || config.SkippedRows[1].Line != 6 {
		t.Errorf("skipped lines = %d,%d, want 5,6", config.SkippedRows[0].Line, config.SkippedRows[1].Line)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"100", 100, true},
		{" 2.5e3 ", 2500, true},
		{"", 0, false},
		{"   ", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,234", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseValue(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseValue(%q) = %v,%v want %v,%v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
