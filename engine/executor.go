package engine

import "errors"

// ============================================================================
// EXECUTOR — Composes filters, aggregations and builders into a Dashboard
// ============================================================================
// Entry point: Build(table, selection, opts...)
//
// Pipeline:
//   1. Resolve selection (nil → DefaultSelection)
//   2. ApplyFilters → FilteredView + YearSlice
//   3. Summarize → KPIs
//   4. TrendSeries → trend chart + data table
//   5. RankedDescending + TopRanked → ranking chart + insight
//
// Called once per user interaction. Nothing is retained between calls.
// ============================================================================

// Build runs the full view pipeline for one selection.
//
// A nil table returns ErrNotLoaded. Every other empty state (empty table,
// empty filtered view, empty year slice) is reported through Dashboard.Empty
// and Dashboard.Messages, with the affected sections left nil.
func Build(t *Table, sel *FilterSelection, opts ...Option) (*Dashboard, error) {
	if t == nil {
		return nil, ErrNotLoaded
	}
	cfg := applyOptions(opts)

	resolved := DefaultSelection(t, cfg.DefaultCountries)
	if sel != nil {
		resolved = *sel
	}

	d := &Dashboard{
		Title:     cfg.Title,
		Selection: resolved,
	}

	if t.IsEmpty() {
		d.Empty = true
		d.Messages = append(d.Messages, MsgDatasetEmpty)
		return d, nil
	}

	filtered, slice := ApplyFilters(t, resolved)

	// KPIs always describe the full table, not the selection.
	stats, err := Summarize(t)
	switch {
	case err == nil:
		d.Summary = &stats
		d.KPIs = BuildKPIs(stats, cfg.CurrencySymbol)
	case errors.Is(err, ErrNoLatestYearData):
		d.Messages = append(d.Messages, MsgDatasetEmpty)
	default:
		return nil, err
	}

	if filtered.IsEmpty() {
		d.Messages = append(d.Messages, MsgNoFilteredData)
	} else {
		d.Trend = TrendSeries(filtered)
		d.TrendChart = BuildTrendChart(d.Trend)
		d.TableData = BuildTable("GDP Data", filtered)
	}

	top, err := TopRanked(slice)
	switch {
	case err == nil:
		d.Ranking = RankedDescending(slice)
		d.RankingChart = BuildRankingChart(d.Ranking, slice.Year)
		d.Insight = BuildInsight(top, slice.Year, cfg.CurrencySymbol)
	case errors.Is(err, ErrEmptySlice):
		d.Messages = append(d.Messages, MsgNoYearData)
	default:
		return nil, err
	}

	return d, nil
}
