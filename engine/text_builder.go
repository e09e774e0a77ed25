package engine

import "fmt"

// ============================================================================
// TEXT BUILDER — KPI panel values and the ranking insight sentence
// ============================================================================

// Empty-state messages surfaced to the presentation layer.
const (
	MsgDatasetEmpty   = "Dataset is empty or failed to load."
	MsgNoFilteredData = "No data available for selected filters."
	MsgNoYearData     = "No data available for selected year."
)

// BuildKPIs renders the four headline metrics of the summary panel.
func BuildKPIs(stats SummaryStats, symbol string) []KPI {
	return []KPI{
		{Label: "Total Countries", Value: FormatInt(stats.CountryCount)},
		{Label: "Year Coverage", Value: FormatYearRange(stats.YearMin, stats.YearMax)},
		{Label: "Highest GDP (Latest Year)", Value: FormatCurrency(stats.LatestYearMaxGDP, symbol)},
		{Label: "Countries Reported (Latest Year)", Value: FormatInt(stats.LatestYearCountryCount)},
	}
}

// BuildInsight describes the top-ranked country of a year.
func BuildInsight(top Observation, year int, symbol string) string {
	return fmt.Sprintf("In %d, %s recorded the highest GDP at %s.",
		year, top.Country, FormatCurrency(top.GDP, symbol))
}
