package engine

import "errors"

// ============================================================================
// GDPBOARD ENGINE TYPES — Normalized GDP observations and derived views
// ============================================================================
// The engine owns no I/O. It receives an immutable *Table built by the loader
// and returns read-only projections plus render-ready output.
// ============================================================================

var (
	// ErrNotLoaded is returned when a nil table is passed where a loaded table
	// is required. An empty table is a different, valid state.
	ErrNotLoaded = errors.New("engine: table not loaded")

	// ErrEmptySlice is returned by TopRanked for a year slice with no observations.
	ErrEmptySlice = errors.New("engine: empty year slice")

	// ErrNoLatestYearData is returned by Summarize when the table has no
	// observations for its latest year.
	ErrNoLatestYearData = errors.New("engine: no data for latest year")
)

// ============================================================================
// OBSERVATION — one (country, year, gdp) fact
// ============================================================================

// Observation is the atomic unit of the normalized long-format table.
type Observation struct {
	Country string  `json:"country"`
	Year    int     `json:"year"`
	GDP     float64 `json:"gdp"`
}

// ============================================================================
// SELECTION — user-driven filter input
// ============================================================================

// YearRange is an inclusive year interval.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// FilterSelection is the ephemeral input to ApplyFilters.
// Countries has set semantics: order and repeats are irrelevant.
type FilterSelection struct {
	Countries      []string  `json:"countries"`
	YearRange      YearRange `json:"yearRange"`
	ComparisonYear int       `json:"comparisonYear"`
}

// ============================================================================
// AGGREGATION RESULTS
// ============================================================================

// SummaryStats holds the KPI figures for a table.
type SummaryStats struct {
	CountryCount           int     `json:"countryCount"`
	YearMin                int     `json:"yearMin"`
	YearMax                int     `json:"yearMax"`
	LatestYearMaxGDP       float64 `json:"latestYearMaxGdp"`
	LatestYearCountryCount int     `json:"latestYearCountryCount"`
}

// Series is one country's trend, ordered by year ascending.
type Series struct {
	Country string       `json:"country"`
	Points  []TrendPoint `json:"points"`
}

// TrendPoint is a single (year, gdp) pair within a Series.
type TrendPoint struct {
	Year int     `json:"year"`
	GDP  float64 `json:"gdp"`
}

// ============================================================================
// DASHBOARD — Render-ready output of Build
// ============================================================================

// Dashboard bundles every view the presentation layer needs for one
// selection. Nil sections are accompanied by an empty-state message.
type Dashboard struct {
	Title     string          `json:"title"`
	Selection FilterSelection `json:"selection"`
	Empty     bool            `json:"empty"`
	Messages  []string        `json:"messages,omitempty"`

	Summary      *SummaryStats `json:"summary,omitempty"`
	KPIs         []KPI         `json:"kpis,omitempty"`
	TrendChart   *ChartConfig  `json:"trendChart,omitempty"`
	RankingChart *ChartConfig  `json:"rankingChart,omitempty"`
	Insight      string        `json:"insight,omitempty"`
	TableData    *TableData    `json:"tableData,omitempty"`

	Trend   []Series      `json:"-"`
	Ranking []Observation `json:"-"`
}

// KPI is a labelled headline metric.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType   string        `json:"chartType"`
	Orientation string        `json:"orientation,omitempty"` // "vertical" (default), "horizontal"
	Title       string        `json:"title"`
	XAxis       string        `json:"xAxis,omitempty"`
	YAxis       string        `json:"yAxis,omitempty"`
	Series      []ChartSeries `json:"series"`
	Colors      []string      `json:"colors,omitempty"`
	ShowLegend  bool          `json:"showLegend"`
	ShowGrid    bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "currency"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
