package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/schema"
)

// ============================================================================
// CSV HELPER — Reads wide GDP tables and melts them into Observations
// ============================================================================
// Consumer opens the source (file, HTTP body, embedded bytes). This helper
// reads it as an all-string dataframe and reshapes it wide → long using the
// layout discovered from the header.
// ============================================================================

// ErrUnreadable marks a source that could not be parsed as a delimited table.
var ErrUnreadable = errors.New("helpers: unreadable table")

// WideOptions controls how a wide table is read.
type WideOptions struct {
	IDColumn  string // identifier column header (default "Country")
	Delimiter rune   // field delimiter (default ',')
}

// ParseStats reports what the reshape kept and dropped.
type ParseStats struct {
	Rows         int // data rows read
	Observations int // observations emitted
	Dropped      int // cells dropped as missing or unparseable
	SkippedRows  int // rows skipped for an empty or repeated country
}

// ReadWide reads a delimited table into its header and string rows.
// Type detection is disabled so every cell reaches the caller as written.
// A leading byte-order mark is dropped. Rows shorter than the header are
// padded with empty cells and longer rows are cut to the header width, so a
// ragged row only loses the cells it lacks. A header with no data rows is
// returned as-is so its layout can still be checked.
func ReadWide(r io.Reader, opt WideOptions) ([]string, [][]string, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no header row", ErrUnreadable)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], bom)
	}
	if len(records) == 1 {
		return headers, [][]string{}, nil
	}

	for i := 1; i < len(records); i++ {
		records[i] = fitRow(records[i], len(headers))
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, df.Err)
	}

	// Records repeats the header with duplicates renamed; keep the raw one so
	// a repeated year is still reported as such.
	out := df.Records()
	return headers, out[1:], nil
}

const bom = "\ufeff"

func fitRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// ParseWideCSV reads a wide table and reshapes it into observations, one per
// (row, year column) with a parseable GDP cell, in row-major order.
//
// Layout problems (missing identifier column, non-integer year label) are
// returned as schema configuration errors. An unparseable source is returned
// as ErrUnreadable. Missing cells are never errors.
func ParseWideCSV(r io.Reader, opt WideOptions) ([]engine.Observation, ParseStats, error) {
	headers, rows, err := ReadWide(r, opt)
	if err != nil {
		return nil, ParseStats{}, err
	}
	return Melt(headers, rows, opt.IDColumn)
}

// Melt reshapes an already-read wide table.
func Melt(headers []string, rows [][]string, idColumn string) ([]engine.Observation, ParseStats, error) {
	layout, err := schema.DiscoverLayout(headers, idColumn)
	if err != nil {
		return nil, ParseStats{}, err
	}

	stats := ParseStats{Rows: len(rows)}
	seen := make(map[string]bool, len(rows))
	obs := make([]engine.Observation, 0, len(rows)*len(layout.YearColumns))

	for _, row := range rows {
		country := field(row, layout.IDIndex)
		if country == "" || seen[country] {
			stats.SkippedRows++
			continue
		}
		seen[country] = true

		for _, col := range layout.YearColumns {
			gdp, ok := schema.ParseValue(field(row, col.Index))
			if !ok {
				stats.Dropped++
				continue
			}
			obs = append(obs, engine.Observation{Country: country, Year: col.Year, GDP: gdp})
		}
	}

	stats.Observations = len(obs)
	return obs, stats, nil
}

// WriteTableCSV writes TableData as CSV: a header of column labels, then rows.
func WriteTableCSV(w io.Writer, table *engine.TableData) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
