package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/schema"
)

const testCSV = `Country,2023,2024,2025
USA,26900000000000,27700000000000,28000000000000
China,17800000000000,18500000000000,19000000000000
Germany,4500000000000,4600000000000,
India,3700000000000,3900000000000,4100000000000
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gdp.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDashboardJSON(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "dashboard", "--file", path, "--countries", "USA", "--countries", "India")
	require.NoError(t, err)

	var d engine.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, []string{"USA", "India"}, d.Selection.Countries)
	assert.Equal(t, engine.YearRange{Min: 2023, Max: 2025}, d.Selection.YearRange)
	assert.Equal(t, "In 2025, USA recorded the highest GDP at $28,000,000,000,000.", d.Insight)
	require.NotNil(t, d.TableData)
	assert.Len(t, d.TableData.Rows, 6)
}

func TestDashboardCountryWithComma(t *testing.T) {
	path := writeCSV(t, "Country,2024\n\"Korea, Rep.\",1700\nJapan,4200\n")
	out, err := run(t, "dashboard", "--file", path, "--countries", "Korea, Rep.")
	require.NoError(t, err)

	var d engine.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, []string{"Korea, Rep."}, d.Selection.Countries)
	require.NotNil(t, d.TableData)
	assert.Len(t, d.TableData.Rows, 1)
}

func TestDashboardText(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "dashboard", "--file", path, "--format", "text", "--countries", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Countries:")
	assert.Contains(t, out, engine.MsgNoFilteredData)
}

func TestSummaryText(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "summary", "--file", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Countries:")
	assert.Contains(t, out, "2023–2025")
	assert.Contains(t, out, "$28,000,000,000,000")
}

func TestTrendCSV(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "trend", "--file", path, "--format", "csv", "--countries", "Germany", "--countries", "USA")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Year,USA,Germany", lines[0])
	assert.Equal(t, "2025,28000000000000,", lines[3])
}

func TestRankCSV(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "rank", "--file", path, "--format", "csv", "--year", "2025")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1,USA,2025,28000000000000", lines[1])
	assert.Equal(t, "3,India,2025,4100000000000", lines[3])
}

func TestRankNoYearData(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "rank", "--file", path, "--year", "1990")
	require.NoError(t, err)
	assert.Contains(t, out, engine.MsgNoYearData)
}

func TestDescribe(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "describe", "--file", path)
	require.NoError(t, err)

	var c schema.Config
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, 4, c.Countries)
	assert.Equal(t, 1, c.Missing)
}

func TestExport(t *testing.T) {
	path := writeCSV(t, testCSV)
	out, err := run(t, "export", "--file", path, "--countries", "India", "--from", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Country,Year,GDP\nIndia,2024,3900000000000\nIndia,2025,4100000000000\n", out)

	_, err = run(t, "export", "--file", path, "--as", "xlsx")
	assert.Error(t, err)

	xlsx := filepath.Join(t.TempDir(), "gdp.xlsx")
	_, err = run(t, "export", "--file", path, "--as", "xlsx", "--out", xlsx)
	require.NoError(t, err)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestChart(t *testing.T) {
	path := writeCSV(t, testCSV)
	for _, kind := range []string{"trend", "ranking"} {
		t.Run(kind, func(t *testing.T) {
			png := filepath.Join(t.TempDir(), kind+".png")
			_, err := run(t, "chart", "--file", path, "--kind", kind, "--out", png)
			require.NoError(t, err)

			b, err := os.ReadFile(png)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))
		})
	}
}

func TestEmptyDatasetHalts(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	for _, sub := range []string{"dashboard", "summary", "trend", "rank", "export"} {
		t.Run(sub, func(t *testing.T) {
			_, err := run(t, sub, "--file", missing)
			assert.ErrorIs(t, err, errEmptyDataset)
		})
	}
}

func TestConfigErrorFails(t *testing.T) {
	path := writeCSV(t, "Country,2024,Total\nUSA,1,2\n")
	_, err := run(t, "summary", "--file", path)
	assert.ErrorIs(t, err, schema.ErrInvalidYearColumn)
	assert.Contains(t, err.Error(), "invalid dataset layout")
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "summary", "--format", "yaml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gdpboard "+version+"\n", out)
}
