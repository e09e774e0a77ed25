// Package gdpboard prepares the data behind a GDP dashboard.
//
// A wide CSV (one row per country, one column per year) is reshaped into
// long-format observations and turned into dashboard views.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/gdpboard/engine"
//	    "github.com/spektr-org/gdpboard/loader"
//	)
//
//	table, err := loader.New().Load(ctx, "data/gdp_country_2020_2025.csv")
//	dash, err := engine.Build(table, nil,
//	    engine.WithCurrencySymbol("$"),
//	    engine.WithDefaultCountries(5),
//	)
//
// The engine package holds the table, the filter engine, the aggregation
// views and the render-ready builders. It performs no I/O. Loading, caching,
// chart rendering and the HTTP server live in their own packages, and
// cmd/gdpboard wires them together.
package gdpboard
