package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/gdpboard/cache"
	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/internal/config"
	"github.com/spektr-org/gdpboard/internal/logging"
	"github.com/spektr-org/gdpboard/loader"
)

// ============================================================================
// GDPBOARD CLI — GDP dashboard data preparation
// ============================================================================

var version = "0.1.0"

// errEmptyDataset halts every command when the source is empty or unreadable.
var errEmptyDataset = errors.New(engine.MsgDatasetEmpty)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the composition root shared by all subcommands.
type app struct {
	// Global flags
	configPath string
	filePath   string
	format     string
	outPath    string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	loader   *loader.Loader
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gdpboard",
		Short: "gdpboard - GDP dashboard data preparation",
		Long: `gdpboard loads a wide country-by-year GDP table, reshapes it into
observations and prepares the views of a GDP dashboard: KPI summary,
trend lines, a single-year ranking and the filtered data table.

Views are printed as JSON, text or CSV, rendered as PNG charts, exported
to CSV/XLSX, or served over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	flags.StringVar(&a.filePath, "file", "", "Path to wide GDP CSV (overrides data.source_path)")
	flags.StringVar(&a.format, "format", "json", "Output format: json, pretty, text, csv")
	flags.StringVarP(&a.outPath, "out", "o", "", "Write output to file instead of stdout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newDashboardCmd(a),
		newSummaryCmd(a),
		newTrendCmd(a),
		newRankCmd(a),
		newDescribeCmd(a),
		newExportCmd(a),
		newChartCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger, cache and loader.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	switch a.format {
	case "json", "pretty", "text", "csv":
	default:
		return fmt.Errorf("unknown format %q (want json, pretty, text or csv)", a.format)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.filePath != "" {
		cfg.Data.SourcePath = a.filePath
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tables := cache.New[*engine.Table](cache.WithMetrics(cache.NewMetrics(a.registry, "table")))

	a.loader = loader.New(
		loader.WithCache(tables),
		loader.WithTTL(cfg.Data.CacheTTL),
		loader.WithIDColumn(cfg.Data.IDColumn),
		loader.WithDelimiter(cfg.Data.DelimiterRune()),
		loader.WithLogger(a.logger),
	)
	return nil
}

// table loads the configured dataset and halts on an empty one.
func (a *app) table(ctx context.Context) (*engine.Table, error) {
	t, err := a.loader.Load(ctx, a.cfg.Data.SourcePath)
	if loader.IsConfigError(err) {
		return nil, fmt.Errorf("invalid dataset layout (check data.id_column and the year headers): %w", err)
	}
	if err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return nil, errEmptyDataset
	}
	return t, nil
}

func (a *app) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTitle(a.cfg.Dashboard.Title),
		engine.WithCurrencySymbol(a.cfg.Dashboard.CurrencySymbol),
		engine.WithDefaultCountries(a.cfg.Dashboard.DefaultCountries),
	}
}

// output returns the destination for command output: --out if set, else the
// command's stdout.
func (a *app) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if a.outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(a.outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// emit writes through output and reports the destination when writing a file.
func (a *app) emit(cmd *cobra.Command, write func(io.Writer) error) error {
	w, closeFn, err := a.output(cmd)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if a.outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Output written to %s\n", a.outPath)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version and exit",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gdpboard %s\n", version)
		},
	}
}
