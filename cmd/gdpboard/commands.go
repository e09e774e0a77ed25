package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/helpers"
	"github.com/spektr-org/gdpboard/render"
	"github.com/spektr-org/gdpboard/schema"
	"github.com/spektr-org/gdpboard/server"
)

// ============================================================================
// SELECTION FLAGS
// ============================================================================

// selectionFlags overrides parts of the default selection. Flags left unset
// keep the default; --countries "" selects no countries. Country names may
// contain commas, so each flag carries exactly one country.
type selectionFlags struct {
	countries []string
	from      int
	to        int
	year      int
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&s.countries, "countries", nil, "Country to select, repeatable (default: first N alphabetically)")
	cmd.Flags().IntVar(&s.from, "from", 0, "First year of the range (default: earliest)")
	cmd.Flags().IntVar(&s.to, "to", 0, "Last year of the range (default: latest)")
	cmd.Flags().IntVar(&s.year, "year", 0, "Comparison year (default: latest)")
}

func (s *selectionFlags) resolve(cmd *cobra.Command, t *engine.Table, n int) engine.FilterSelection {
	sel := engine.DefaultSelection(t, n)
	flags := cmd.Flags()
	if flags.Changed("countries") {
		sel.Countries = engine.ParseCountries(s.countries)
	}
	if flags.Changed("from") {
		sel.YearRange.Min = s.from
	}
	if flags.Changed("to") {
		sel.YearRange.Max = s.to
	}
	if flags.Changed("year") {
		sel.ComparisonYear = s.year
	}
	return sel
}

// ============================================================================
// VIEW COMMANDS
// ============================================================================

func newDashboardCmd(a *app) *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Build every dashboard view for a selection",
		Example: `  gdpboard dashboard --countries USA --countries China --from 2021 --to 2024 --format pretty
  gdpboard dashboard --year 2023 --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			sel := sf.resolve(cmd, t, a.cfg.Dashboard.DefaultCountries)
			d, err := engine.Build(t, &sel, a.engineOptions()...)
			if err != nil {
				return err
			}
			return a.emit(cmd, func(w io.Writer) error {
				switch a.format {
				case "text":
					return writeDashboardText(w, d)
				case "csv":
					if d.TableData == nil {
						return writeMessagesCSV(w, d.Messages)
					}
					return helpers.WriteTableCSV(w, d.TableData)
				default:
					return writeJSON(w, d, a.format)
				}
			})
		},
	}
	sf.register(cmd)
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print KPI summary statistics of the full dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := engine.Summarize(t)
			if err != nil {
				return err
			}
			kpis := engine.BuildKPIs(stats, a.cfg.Dashboard.CurrencySymbol)
			return a.emit(cmd, func(w io.Writer) error {
				switch a.format {
				case "text":
					return writeKPIsText(w, kpis)
				case "csv":
					return writeKPIsCSV(w, kpis)
				default:
					return writeJSON(w, struct {
						Summary engine.SummaryStats `json:"summary"`
						KPIs    []engine.KPI        `json:"kpis"`
					}{stats, kpis}, a.format)
				}
			})
		},
	}
}

func newTrendCmd(a *app) *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print per-country GDP series for the selected countries and years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			sel := sf.resolve(cmd, t, a.cfg.Dashboard.DefaultCountries)
			filtered, _ := engine.ApplyFilters(t, sel)
			series := engine.TrendSeries(filtered)
			return a.emit(cmd, func(w io.Writer) error {
				if len(series) == 0 && a.format != "json" && a.format != "pretty" {
					_, err := fmt.Fprintln(w, engine.MsgNoFilteredData)
					return err
				}
				switch a.format {
				case "text":
					return writeTrendText(w, series, a.cfg.Dashboard.CurrencySymbol)
				case "csv":
					return writeChartCSV(w, engine.BuildTrendChart(series))
				default:
					return writeJSON(w, series, a.format)
				}
			})
		},
	}
	sf.register(cmd)
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank every country by GDP for the comparison year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			sel := sf.resolve(cmd, t, a.cfg.Dashboard.DefaultCountries)
			_, slice := engine.ApplyFilters(t, sel)
			top, err := engine.TopRanked(slice)
			if errors.Is(err, engine.ErrEmptySlice) {
				return a.emit(cmd, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, engine.MsgNoYearData)
					return err
				})
			}
			if err != nil {
				return err
			}
			ranked := engine.RankedDescending(slice)
			symbol := a.cfg.Dashboard.CurrencySymbol
			return a.emit(cmd, func(w io.Writer) error {
				switch a.format {
				case "text":
					return writeRankingText(w, ranked, engine.BuildInsight(top, slice.Year, symbol), symbol)
				case "csv":
					return writeRankingCSV(w, ranked)
				default:
					return writeJSON(w, ranked, a.format)
				}
			})
		},
	}
	sf.register(cmd)
	return cmd
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Describe the source layout and per-year coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data.SourcePath
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			defer f.Close()

			headers, rows, err := helpers.ReadWide(f, helpers.WideOptions{
				IDColumn:  a.cfg.Data.IDColumn,
				Delimiter: a.cfg.Data.DelimiterRune(),
			})
			if err != nil {
				return err
			}
			desc, err := schema.Describe(headers, rows, schema.DiscoverOptions{
				IDColumn: a.cfg.Data.IDColumn,
				Name:     filepath.Base(path),
				Source:   path,
			})
			if err != nil {
				return err
			}
			return a.emit(cmd, func(w io.Writer) error {
				switch a.format {
				case "text":
					return writeDescribeText(w, desc)
				case "csv":
					return writeCoverageCSV(w, desc.Coverage)
				default:
					return writeJSON(w, desc, a.format)
				}
			})
		},
	}
}

// ============================================================================
// FILE COMMANDS
// ============================================================================

func newExportCmd(a *app) *cobra.Command {
	var (
		sf   selectionFlags
		kind string
	)
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the filtered data table as CSV or XLSX",
		Example: `  gdpboard export --as xlsx --countries USA --countries Japan -o gdp.xlsx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind == "xlsx" && a.outPath == "" {
				return errors.New("--out is required for xlsx export")
			}
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			sel := sf.resolve(cmd, t, a.cfg.Dashboard.DefaultCountries)
			filtered, _ := engine.ApplyFilters(t, sel)
			data := engine.BuildTable("GDP Data", filtered)

			return a.emit(cmd, func(w io.Writer) error {
				switch kind {
				case "csv":
					return helpers.WriteTableCSV(w, data)
				case "xlsx":
					return helpers.WriteTableXLSX(w, data, helpers.DefaultSheet)
				default:
					return fmt.Errorf("unknown export type %q (want csv or xlsx)", kind)
				}
			})
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&kind, "as", "csv", "Export type: csv, xlsx")
	return cmd
}

func newChartCmd(a *app) *cobra.Command {
	var (
		sf   selectionFlags
		kind string
	)
	cmd := &cobra.Command{
		Use:     "chart",
		Short:   "Render the trend or ranking chart as PNG",
		Example: `  gdpboard chart --kind ranking --year 2024 -o ranking.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.outPath == "" {
				return errors.New("--out is required for chart output")
			}
			t, err := a.table(cmd.Context())
			if err != nil {
				return err
			}
			sel := sf.resolve(cmd, t, a.cfg.Dashboard.DefaultCountries)
			filtered, slice := engine.ApplyFilters(t, sel)
			size := render.Size{Width: a.cfg.Charts.Width, Height: a.cfg.Charts.Height}

			var draw func(io.Writer) error
			switch kind {
			case "trend":
				cfg := engine.BuildTrendChart(engine.TrendSeries(filtered))
				if cfg == nil {
					return errors.New(engine.MsgNoFilteredData)
				}
				draw = func(w io.Writer) error { return render.TrendPNG(w, cfg, size) }
			case "ranking":
				cfg := engine.BuildRankingChart(engine.RankedDescending(slice), slice.Year)
				if cfg == nil {
					return errors.New(engine.MsgNoYearData)
				}
				draw = func(w io.Writer) error { return render.RankingPNG(w, cfg, size) }
			default:
				return fmt.Errorf("unknown chart kind %q (want trend or ranking)", kind)
			}
			return a.emit(cmd, draw)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&kind, "kind", "trend", "Chart kind: trend, ranking")
	return cmd
}

// ============================================================================
// SERVER
// ============================================================================

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboards, charts and exports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.loader, a.cfg.Data.SourcePath,
				server.WithLogger(a.logger),
				server.WithRegistry(a.registry),
				server.WithTitle(a.cfg.Dashboard.Title),
				server.WithCurrencySymbol(a.cfg.Dashboard.CurrencySymbol),
				server.WithDefaultCountries(a.cfg.Dashboard.DefaultCountries),
				server.WithChartSize(render.Size{Width: a.cfg.Charts.Width, Height: a.cfg.Charts.Height}),
				server.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
			)

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
