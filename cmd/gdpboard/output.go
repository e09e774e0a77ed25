package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/schema"
)

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeDashboardText(w io.Writer, d *engine.Dashboard) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", d.Title, strings.Repeat("=", len(d.Title)))

	sel := d.Selection
	fmt.Fprintf(&b, "Countries: %s\n", strings.Join(sel.Countries, ", "))
	fmt.Fprintf(&b, "Years:     %s\n", engine.FormatYearRange(sel.YearRange.Min, sel.YearRange.Max))
	fmt.Fprintf(&b, "Compare:   %d\n\n", sel.ComparisonYear)

	for _, k := range d.KPIs {
		fmt.Fprintf(&b, "%-34s %s\n", k.Label+":", k.Value)
	}
	if d.Insight != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Insight)
	}
	if d.TableData != nil {
		fmt.Fprintf(&b, "\n%s\n", d.TableData.Summary.Label)
	}
	for _, m := range d.Messages {
		fmt.Fprintf(&b, "\n! %s", m)
	}
	if len(d.Messages) > 0 {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeKPIsText(w io.Writer, kpis []engine.KPI) error {
	for _, k := range kpis {
		if _, err := fmt.Fprintf(w, "%-34s %s\n", k.Label+":", k.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeTrendText(w io.Writer, series []engine.Series, symbol string) error {
	for _, s := range series {
		if _, err := fmt.Fprintln(w, s.Country); err != nil {
			return err
		}
		for _, p := range s.Points {
			if _, err := fmt.Fprintf(w, "  %d  %s\n", p.Year, engine.FormatCurrency(p.GDP, symbol)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRankingText(w io.Writer, ranked []engine.Observation, insight, symbol string) error {
	if _, err := fmt.Fprintln(w, insight); err != nil {
		return err
	}
	for i, o := range ranked {
		if _, err := fmt.Fprintf(w, "%3d. %-24s %s\n", i+1, o.Country, engine.FormatCurrency(o.GDP, symbol)); err != nil {
			return err
		}
	}
	return nil
}

func writeDescribeText(w io.Writer, c *schema.Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset:    %s\n", c.Name)
	fmt.Fprintf(&b, "ID column:  %s (column %d)\n", c.Layout.IDColumn, c.Layout.IDIndex+1)
	fmt.Fprintf(&b, "Years:      %d columns\n", len(c.Layout.YearColumns))
	fmt.Fprintf(&b, "Countries:  %d of %d rows\n", c.Countries, c.Rows)
	fmt.Fprintf(&b, "Cells:      %d reported, %d missing\n\n", c.Cells-c.Missing, c.Missing)
	for _, cov := range c.Coverage {
		fmt.Fprintf(&b, "  %d  %4d reported  %4d missing\n", cov.Year, cov.Reported, cov.Missing)
	}
	for _, s := range c.SkippedRows {
		fmt.Fprintf(&b, "  line %d skipped: %s\n", s.Line, s.Reason)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

// writeChartCSV writes a chart config as a grid. A single series yields two
// columns; multiple series yield one row per label and one column per series,
// with blanks where a series has no point for the label.
func writeChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	cw := csv.NewWriter(w)
	if chart == nil || len(chart.Series) == 0 {
		cw.Write([]string{"Result", "No data"})
		cw.Flush()
		return cw.Error()
	}

	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		cw.Flush()
		return cw.Error()
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	var labels []string
	seen := make(map[string]bool)
	values := make([]map[string]float64, len(chart.Series))
	for i, s := range chart.Series {
		headers = append(headers, s.Name)
		values[i] = make(map[string]float64, len(s.Data))
		for _, d := range s.Data {
			values[i][d.Label] = d.Value
			if !seen[d.Label] {
				seen[d.Label] = true
				labels = append(labels, d.Label)
			}
		}
	}
	sort.SliceStable(labels, func(i, j int) bool { return labelLess(labels[i], labels[j]) })

	cw.Write(headers)
	for _, label := range labels {
		row := []string{label}
		for i := range chart.Series {
			if v, ok := values[i][label]; ok {
				row = append(row, fmtNum(v))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

func writeRankingCSV(w io.Writer, ranked []engine.Observation) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Rank", "Country", "Year", "GDP"})
	for i, o := range ranked {
		cw.Write([]string{strconv.Itoa(i + 1), o.Country, strconv.Itoa(o.Year), fmtNum(o.GDP)})
	}
	cw.Flush()
	return cw.Error()
}

func writeKPIsCSV(w io.Writer, kpis []engine.KPI) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Metric", "Value"})
	for _, k := range kpis {
		cw.Write([]string{k.Label, k.Value})
	}
	cw.Flush()
	return cw.Error()
}

func writeCoverageCSV(w io.Writer, coverage []schema.Coverage) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Year", "Reported", "Missing"})
	for _, c := range coverage {
		cw.Write([]string{strconv.Itoa(c.Year), strconv.Itoa(c.Reported), strconv.Itoa(c.Missing)})
	}
	cw.Flush()
	return cw.Error()
}

func writeMessagesCSV(w io.Writer, messages []string) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Message"})
	for _, m := range messages {
		cw.Write([]string{m})
	}
	cw.Flush()
	return cw.Error()
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// labelLess orders numeric labels numerically and the rest lexically.
func labelLess(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}
