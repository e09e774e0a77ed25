package engine

import "strconv"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from trend series and rankings
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildTrendChart produces a multi-series line chart, one series per country.
// Returns nil when there is nothing to plot.
func BuildTrendChart(series []Series) *ChartConfig {
	if len(series) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "line",
		Title:      "GDP Trend by Country",
		XAxis:      "Year",
		YAxis:      "GDP (USD)",
		ShowLegend: true,
		ShowGrid:   true,
	}

	config.Series = make([]ChartSeries, 0, len(series))
	for i, s := range series {
		points := make([]ChartPoint, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, ChartPoint{
				Label: strconv.Itoa(p.Year),
				Value: RoundTo2(p.GDP),
			})
		}
		config.Series = append(config.Series, ChartSeries{
			Name:  s.Country,
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}

	config.Colors = assignColors(len(config.Series))
	return config
}

// BuildRankingChart produces a horizontal bar chart of one year's ranking.
// ranked is expected in display order (highest first).
func BuildRankingChart(ranked []Observation, year int) *ChartConfig {
	if len(ranked) == 0 {
		return nil
	}

	points := make([]ChartPoint, 0, len(ranked))
	for _, o := range ranked {
		points = append(points, ChartPoint{
			Label: o.Country,
			Value: RoundTo2(o.GDP),
		})
	}

	return &ChartConfig{
		ChartType:   "bar",
		Orientation: "horizontal",
		Title:       "GDP by Country – " + strconv.Itoa(year),
		XAxis:       "GDP (USD)",
		YAxis:       "Country",
		Series: []ChartSeries{{
			Name: strconv.Itoa(year),
			Data: points,
		}},
		Colors:     assignColors(1),
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
