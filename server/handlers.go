package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/helpers"
	"github.com/spektr-org/gdpboard/loader"
	"github.com/spektr-org/gdpboard/render"
)

// ============================================================================
// RESPONSES
// ============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type summaryResponse struct {
	Summary engine.SummaryStats `json:"summary"`
	KPIs    []engine.KPI        `json:"kpis"`
}

type optionsResponse struct {
	Countries []string               `json:"countries"`
	Years     []int                  `json:"years"`
	Default   engine.FilterSelection `json:"default"`
}

type trendResponse struct {
	Selection engine.FilterSelection `json:"selection"`
	Series    []engine.Series        `json:"series"`
	Chart     *engine.ChartConfig    `json:"chart,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

type rankingResponse struct {
	Year    int                  `json:"year"`
	Ranking []engine.Observation `json:"ranking"`
	Chart   *engine.ChartConfig  `json:"chart,omitempty"`
	Insight string               `json:"insight,omitempty"`
	Message string               `json:"message,omitempty"`
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	d, err := engine.Build(table, &sel, s.engineOptions()...)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	table, ok := s.table(w, r)
	if !ok {
		return
	}
	stats, err := engine.Summarize(table)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summaryResponse{
		Summary: stats,
		KPIs:    engine.BuildKPIs(stats, s.currencySymbol),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	table, ok := s.table(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, optionsResponse{
		Countries: table.Countries(),
		Years:     table.Years(),
		Default:   engine.DefaultSelection(table, s.defaultCountries),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	filtered, _ := engine.ApplyFilters(table, sel)

	resp := trendResponse{Selection: sel, Series: engine.TrendSeries(filtered)}
	if len(resp.Series) == 0 {
		resp.Message = engine.MsgNoFilteredData
	} else {
		resp.Chart = engine.BuildTrendChart(resp.Series)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	_, slice := engine.ApplyFilters(table, sel)

	resp := rankingResponse{Year: slice.Year, Ranking: engine.RankedDescending(slice)}
	top, err := engine.TopRanked(slice)
	switch {
	case err == nil:
		resp.Chart = engine.BuildRankingChart(resp.Ranking, slice.Year)
		resp.Insight = engine.BuildInsight(top, slice.Year, s.currencySymbol)
	case errors.Is(err, engine.ErrEmptySlice):
		resp.Message = engine.MsgNoYearData
	default:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendPNG(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	filtered, _ := engine.ApplyFilters(table, sel)
	cfg := engine.BuildTrendChart(engine.TrendSeries(filtered))
	if cfg == nil {
		s.writeError(w, r, http.StatusNotFound, engine.MsgNoFilteredData)
		return
	}
	s.writePNG(w, r, func(buf *bytes.Buffer) error {
		return render.TrendPNG(buf, cfg, s.chartSize)
	})
}

func (s *Server) handleRankingPNG(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	_, slice := engine.ApplyFilters(table, sel)
	cfg := engine.BuildRankingChart(engine.RankedDescending(slice), slice.Year)
	if cfg == nil {
		s.writeError(w, r, http.StatusNotFound, engine.MsgNoYearData)
		return
	}
	s.writePNG(w, r, func(buf *bytes.Buffer) error {
		return render.RankingPNG(buf, cfg, s.chartSize)
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	filtered, _ := engine.ApplyFilters(table, sel)
	data := engine.BuildTable("GDP Data", filtered)

	var buf bytes.Buffer
	if err := helpers.WriteTableCSV(&buf, data); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gdp_data.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	table, sel, ok := s.prepare(w, r)
	if !ok {
		return
	}
	filtered, _ := engine.ApplyFilters(table, sel)
	data := engine.BuildTable("GDP Data", filtered)

	var buf bytes.Buffer
	if err := helpers.WriteTableXLSX(&buf, data, helpers.DefaultSheet); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="gdp_data.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// HELPERS
// ============================================================================

// table loads the dataset. A malformed layout answers 500; any other load
// failure, or a dataset that is empty or could not be read, answers 503.
func (s *Server) table(w http.ResponseWriter, r *http.Request) (*engine.Table, bool) {
	table, err := s.source.Load(r.Context(), s.path)
	if err != nil {
		status := http.StatusServiceUnavailable
		if loader.IsConfigError(err) {
			status = http.StatusInternalServerError
		}
		s.fail(w, r, status, err)
		return nil, false
	}
	if table.IsEmpty() {
		s.writeError(w, r, http.StatusServiceUnavailable, engine.MsgDatasetEmpty)
		return nil, false
	}
	return table, true
}

func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (*engine.Table, engine.FilterSelection, bool) {
	table, ok := s.table(w, r)
	if !ok {
		return nil, engine.FilterSelection{}, false
	}
	sel, err := ParseSelection(r.URL.Query(), table, s.defaultCountries)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return nil, engine.FilterSelection{}, false
	}
	return table, sel, true
}

// ParseSelection builds a selection from query parameters. Countries are
// repeated parameters (countries=USA&countries=Japan). Absent parameters take
// their value from the table's default selection; a present but empty
// countries parameter selects no countries.
func ParseSelection(q url.Values, table *engine.Table, defaultCountries int) (engine.FilterSelection, error) {
	sel := engine.DefaultSelection(table, defaultCountries)

	if vals, ok := q["countries"]; ok {
		sel.Countries = engine.ParseCountries(vals)
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"from", &sel.YearRange.Min},
		{"to", &sel.YearRange.Max},
		{"year", &sel.ComparisonYear},
	} {
		if !q.Has(p.name) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(q.Get(p.name)))
		if err != nil {
			return engine.FilterSelection{}, fmt.Errorf("invalid %s: %q", p.name, q.Get(p.name))
		}
		*p.dst = v
	}
	return sel, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error("request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.writeError(w, r, status, err.Error())
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
