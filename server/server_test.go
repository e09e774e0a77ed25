package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ============================================================================
// FIXTURES
// ============================================================================

type stubSource struct {
	table *engine.Table
	err   error
}

func (s stubSource) Load(context.Context, string) (*engine.Table, error) {
	return s.table, s.err
}

func fixture() *engine.Table {
	return engine.NewTable([]engine.Observation{
		{Country: "USA", Year: 2024, GDP: 27.7e12},
		{Country: "USA", Year: 2025, GDP: 28.0e12},
		{Country: "China", Year: 2024, GDP: 18.5e12},
		{Country: "China", Year: 2025, GDP: 19.0e12},
		{Country: "India", Year: 2024, GDP: 3.9e12},
	})
}

func newTestServer(src TableSource) *Server {
	return New(src, "gdp.csv", WithDefaultCountries(2))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ============================================================================
// API
// ============================================================================

func TestDashboard(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var d engine.Dashboard
	decode(t, rec, &d)
	assert.Equal(t, []string{"China", "India"}, d.Selection.Countries)
	assert.Equal(t, 2025, d.Selection.ComparisonYear)
	assert.Equal(t, "In 2025, USA recorded the highest GDP at $28,000,000,000,000.", d.Insight)
	require.NotNil(t, d.Summary)
	assert.Equal(t, 3, d.Summary.CountryCount)
}

func TestDashboardSelectionParams(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/dashboard?countries=USA&from=2025&to=2025&year=2024")
	require.Equal(t, http.StatusOK, rec.Code)

	var d engine.Dashboard
	decode(t, rec, &d)
	assert.Equal(t, []string{"USA"}, d.Selection.Countries)
	assert.Equal(t, engine.YearRange{Min: 2025, Max: 2025}, d.Selection.YearRange)
	require.NotNil(t, d.TableData)
	assert.Len(t, d.TableData.Rows, 1)
	assert.Equal(t, "In 2024, USA recorded the highest GDP at $27,700,000,000,000.", d.Insight)
}

func TestDashboardEmptyCountrySet(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/dashboard?countries=")
	require.Equal(t, http.StatusOK, rec.Code)

	var d engine.Dashboard
	decode(t, rec, &d)
	assert.Empty(t, d.Selection.Countries)
	assert.Contains(t, d.Messages, engine.MsgNoFilteredData)
	assert.Nil(t, d.TrendChart)
	// the comparison slice ignores the country filter
	assert.NotNil(t, d.RankingChart)
}

func TestBadSelection(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/trend?from=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	decode(t, rec, &resp)
	assert.Equal(t, engine.SummaryStats{
		CountryCount:           3,
		YearMin:                2024,
		YearMax:                2025,
		LatestYearMaxGDP:       28.0e12,
		LatestYearCountryCount: 2,
	}, resp.Summary)
	assert.Len(t, resp.KPIs, 4)
}

func TestOptions(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp optionsResponse
	decode(t, rec, &resp)
	assert.Equal(t, []string{"China", "India", "USA"}, resp.Countries)
	assert.Equal(t, []int{2024, 2025}, resp.Years)
}

func TestTrend(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/trend?countries=USA&countries=India")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp trendResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Series, 2)
	assert.Equal(t, "USA", resp.Series[0].Country)
	assert.Equal(t, "India", resp.Series[1].Country)
	assert.NotNil(t, resp.Chart)
}

func TestRankingNoYearData(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/ranking?year=1999")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rankingResponse
	decode(t, rec, &resp)
	assert.Equal(t, engine.MsgNoYearData, resp.Message)
	assert.Empty(t, resp.Ranking)
}

func TestRanking(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/api/ranking?year=2024")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rankingResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Ranking, 3)
	assert.Equal(t, "USA", resp.Ranking[0].Country)
	assert.Equal(t, "India", resp.Ranking[2].Country)
}

// ============================================================================
// EMPTY AND FAILING SOURCES
// ============================================================================

func TestEmptyDatasetIs503(t *testing.T) {
	s := newTestServer(stubSource{table: engine.NewTable(nil)})
	for _, path := range []string{"/api/dashboard", "/api/summary", "/charts/trend.png", "/export/data.csv"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, s, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), engine.MsgDatasetEmpty)
		})
	}
}

func TestConfigErrorIs500(t *testing.T) {
	err := fmt.Errorf("load gdp.csv: %w", schema.ErrInvalidYearColumn)
	rec := get(t, newTestServer(stubSource{err: err}), "/api/dashboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoadFailureIs503(t *testing.T) {
	rec := get(t, newTestServer(stubSource{err: errors.New("boom")}), "/api/options")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ============================================================================
// CHARTS AND EXPORTS
// ============================================================================

func TestChartPNG(t *testing.T) {
	s := New(stubSource{table: fixture()}, "gdp.csv")
	for _, path := range []string{"/charts/trend.png", "/charts/ranking.png"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, s, path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
		})
	}
}

func TestChartPNGNoData(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/charts/trend.png?countries=Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/export/data.csv?countries=USA")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Country,Year,GDP\nUSA,2024,27700000000000\nUSA,2025,28000000000000\n", rec.Body.String())
}

func TestExportXLSX(t *testing.T) {
	rec := get(t, newTestServer(stubSource{table: fixture()}), "/export/data.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

// ============================================================================
// OPERATIONS
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	s := New(stubSource{table: fixture()}, "gdp.csv", WithRegistry(prometheus.NewRegistry()))

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gdpboard_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(stubSource{table: fixture()})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestParseSelectionDefaults(t *testing.T) {
	sel, err := ParseSelection(nil, fixture(), 5)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultSelection(fixture(), 5), sel)

	sel, err = ParseSelection(map[string][]string{"countries": {"Korea, Rep.", " India "}}, fixture(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Korea, Rep.", "India"}, sel.Countries)

	_, err = ParseSelection(map[string][]string{"year": {"20x5"}}, fixture(), 5)
	assert.True(t, strings.Contains(err.Error(), "year"))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(stubSource{table: fixture()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
