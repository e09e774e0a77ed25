package helpers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/schema"
)

const wideCSV = `Country,2020,2021,2022
Alphaland,100,110,
Betastan,200,210,220
Gammaria,300,,320
`

func TestParseWideCSVDropsMissingCells(t *testing.T) {
	obs, stats, err := ParseWideCSV(strings.NewReader(wideCSV), WideOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 7, stats.Observations)
	assert.Equal(t, 2, stats.Dropped)

	var alpha []engine.Observation
	for _, o := range obs {
		if o.Country == "Alphaland" {
			alpha = append(alpha, o)
		}
	}
	assert.Equal(t, []engine.Observation{
		{Country: "Alphaland", Year: 2020, GDP: 100},
		{Country: "Alphaland", Year: 2021, GDP: 110},
	}, alpha)
}

func TestParseWideCSVNoMissingRoundTrip(t *testing.T) {
	src := "Country,2020,2021\nA,1,2\nB,3,4\n"
	obs, stats, err := ParseWideCSV(strings.NewReader(src), WideOptions{})
	require.NoError(t, err)

	// countries × year columns when no cell is missing
	assert.Len(t, obs, 2*2)
	assert.Zero(t, stats.Dropped)
}

func TestParseWideCSVUniquePairs(t *testing.T) {
	src := "Country,2020,2021\nA,1,2\nB,3,4\nA,5,6\n"
	obs, stats, err := ParseWideCSV(strings.NewReader(src), WideOptions{})
	require.NoError(t, err)

	type pair struct {
		c string
		y int
	}
	seen := make(map[pair]bool)
	for _, o := range obs {
		p := pair{o.Country, o.Year}
		assert.False(t, seen[p], "duplicate observation for %v", p)
		seen[p] = true
	}
	assert.Equal(t, 1, stats.SkippedRows)
	assert.Equal(t, engine.Observation{Country: "A", Year: 2020, GDP: 1}, obs[0])
}

func TestParseWideCSVDelimiter(t *testing.T) {
	src := "Country;2020\nA;1.5\n"
	obs, _, err := ParseWideCSV(strings.NewReader(src), WideOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 1.5, obs[0].GDP)
}

func TestParseWideCSVBadYearIsConfigError(t *testing.T) {
	src := "Country,2020,Total\nA,1,2\n"
	_, _, err := ParseWideCSV(strings.NewReader(src), WideOptions{})
	assert.ErrorIs(t, err, schema.ErrInvalidYearColumn)
}

func TestParseWideCSVCustomIDColumn(t *testing.T) {
	src := "Nation,2020\nA,1\n"
	_, _, err := ParseWideCSV(strings.NewReader(src), WideOptions{})
	assert.ErrorIs(t, err, schema.ErrMissingIDColumn)

	obs, _, err := ParseWideCSV(strings.NewReader(src), WideOptions{IDColumn: "Nation"})
	require.NoError(t, err)
	assert.Len(t, obs, 1)
}

func TestParseWideCSVUnreadable(t *testing.T) {
	_, _, err := ParseWideCSV(strings.NewReader(""), WideOptions{})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestReadWideRaggedRows(t *testing.T) {
	headers, rows, err := ReadWide(strings.NewReader("Country,2020,2021\nA,1,2\nB,3\nC,4,5,6\n"), WideOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "2020", "2021"}, headers)
	assert.Equal(t, [][]string{{"A", "1", "2"}, {"B", "3", ""}, {"C", "4", "5"}}, rows)
}

func TestReadWideHeaderOnly(t *testing.T) {
	headers, rows, err := ReadWide(strings.NewReader("Country,2020\n"), WideOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "2020"}, headers)
	assert.Empty(t, rows)

	_, _, err = ParseWideCSV(strings.NewReader("Country,2020,Total\n"), WideOptions{})
	assert.ErrorIs(t, err, schema.ErrInvalidYearColumn)
}

func TestReadWideStripsByteOrderMark(t *testing.T) {
	obs, _, err := ParseWideCSV(strings.NewReader("\ufeffCountry,2020\nA,1\n"), WideOptions{})
	require.NoError(t, err)
	assert.Equal(t, []engine.Observation{{Country: "A", Year: 2020, GDP: 1}}, obs)
}

func TestParseWideCSVDuplicateYearHeader(t *testing.T) {
	_, _, err := ParseWideCSV(strings.NewReader("Country,2020,2020\nA,1,2\n"), WideOptions{})
	assert.ErrorIs(t, err, schema.ErrDuplicateYearColumn)
}

func TestParseWideCSVQuotedCountryWithComma(t *testing.T) {
	obs, _, err := ParseWideCSV(strings.NewReader("Country,2020\n\"Korea, Rep.\",1\n"), WideOptions{})
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "Korea, Rep.", obs[0].Country)
}

func TestMeltDuplicateYear(t *testing.T) {
	_, _, err := Melt([]string{"Country", "2020", "2020"}, [][]string{{"A", "1", "2"}}, "")
	assert.ErrorIs(t, err, schema.ErrDuplicateYearColumn)
}

func TestMeltShortRow(t *testing.T) {
	obs, stats, err := Melt([]string{"Country", "2020", "2021"}, [][]string{{"A", "1"}}, "")
	require.NoError(t, err)
	assert.Len(t, obs, 1)
	assert.Equal(t, 1, stats.Dropped)
}

// ============================================================================
// WRITERS
// ============================================================================

func sampleTableData() *engine.TableData {
	tbl := engine.NewTable([]engine.Observation{
		{Country: "A", Year: 2020, GDP: 1.5},
		{Country: "B", Year: 2020, GDP: 2000},
	})
	return engine.BuildTable("GDP Data", tbl)
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, sampleTableData()))
	assert.Equal(t, "Country,Year,GDP\nA,2020,1.5\nB,2020,2000\n", buf.String())
}

func TestWriteTableXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableXLSX(&buf, sampleTableData(), ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Country", "Year", "GDP"}, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "2000", rows[2][2])
}
