package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Halcon/internal/domain/models"
	"Halcon/internal/services/features"
	"Halcon/internal/usecase"
	"Halcon/pkg/cache"
	xhttp "Halcon/pkg/http"
	xlogger "Halcon/pkg/logger"
)

type stubPrices map[string]*models.PriceSeries

func (s stubPrices) GetSeries(_ context.Context, symbol string, _ int, _ models.Interval) (*models.PriceSeries, error) {
	if series, ok := s[symbol]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("%w: %s blocked", models.ErrUpstreamUnavailable, symbol)
}

type stubFunds map[string]*models.Fundamentals

func (s stubFunds) GetFundamentals(_ context.Context, symbol string) (*models.Fundamentals, error) {
	if f, ok := s[symbol]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, symbol)
}

func series(symbol string, n int, last float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: symbol, Interval: models.Interval1d}
	for i := 0; i < n; i++ {
		b := models.Bar{Close: 100, Volume: 1000}
		if i == n-1 {
			b.Close, b.Volume = last, 2000
		}
		s.Bars = append(s.Bars, b)
	}
	return s
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, prices stubPrices, funds stubFunds) *echo.Echo {
	t.Helper()
	store := cache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	memo := cache.NewMemo(store)
	params := features.DefaultParams()

	data := usecase.NewMarketData(prices, funds, memo, nil, usecase.MarketDataConfig{Source: "stub", LookbackDays: 60}, nil)
	screener := usecase.NewScreener(data, memo, nil, nil, usecase.ScreenerConfig{
		Symbols:     []string{"GC=F"},
		Features:    params,
		Concurrency: 2,
		Cooldown:    5 * time.Minute,
	}, nil)
	valuator := usecase.NewValuator(data, models.Assumptions{DiscountRate: 0.10, GrowthRate: 0.05, DividendGrowthRate: 0.03, ExitMultiple: 25, Years: 5}, nil, nil)
	simulator := usecase.NewSimulator(data, usecase.SimulatorConfig{Features: params, Paths: 100, Horizon: 5}, nil, nil)

	h := NewRadarHandler(xlogger.Nop(), data, screener, valuator, simulator, 5*time.Minute)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestScreenEndpoint(t *testing.T) {
	e := newTestServer(t, stubPrices{
		"GC=F": series("GC=F", 40, 110),
		"ES=F": series("ES=F", 40, 101),
	}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/screen?symbols=gc=f,ES=F,BTC-USD&top=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var view ScreenView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Results, 1)
	row := view.Results[0]
	assert.Equal(t, "GC=F", row.Symbol)
	assert.Equal(t, 1, row.Rank)
	assert.Equal(t, 100.25, row.MovingAverage)
	assert.InDelta(t, 6.245, row.ZScore, 0.006)
	assert.InDelta(t, 0.128, row.Hurst, 0.006)
	assert.Equal(t, 1.9, row.RelativeVolume)
	assert.InDelta(t, 2.716, row.Score, 0.006)
	assert.Equal(t, models.RegimeMeanReverting, row.Regime)
	assert.Contains(t, view.Dropped, "BTC-USD")
}

func TestScreenEndpoint_AllBlockedIs503(t *testing.T) {
	e := newTestServer(t, stubPrices{}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/screen?symbols=EURUSD=X")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Status)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))
}

func TestScreenEndpoint_ValidationError(t *testing.T) {
	e := newTestServer(t, stubPrices{}, nil)
	rec, _ := do(t, e, http.MethodGet, "/api/screen?top=1000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValuationEndpoint(t *testing.T) {
	f := models.NewFundamentals("ACME")
	f.Set(models.FigPrice, 100)
	f.Set(models.FigEPS, 5)
	e := newTestServer(t, stubPrices{}, stubFunds{"ACME": f})

	rec, env := do(t, e, http.MethodGet, "/api/valuation?symbol=ACME&growth_rate=0.20")
	require.Equal(t, http.StatusOK, rec.Code)

	var view ValuationView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Models, 3)
	require.NotNil(t, view.Models[0].Value)
	assert.Equal(t, 237.11, *view.Models[0].Value)
	assert.Nil(t, view.Models[1].Value)
	assert.False(t, view.Models[1].Applicable)
	require.NotNil(t, view.Consensus)
	assert.Equal(t, 237.11, *view.Consensus)
	assert.Nil(t, view.Altman.Score)
	assert.Equal(t, 0.20, view.Assumptions.GrowthRate)
}

func TestValuationEndpoint_BadInput(t *testing.T) {
	e := newTestServer(t, stubPrices{}, stubFunds{})

	rec, _ := do(t, e, http.MethodGet, "/api/valuation")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/valuation?symbol=ACME&discount_rate=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/valuation?symbol=ACME&exit_multiple=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulationEndpoint_Raw(t *testing.T) {
	e := newTestServer(t, stubPrices{}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/simulation?price=50&volatility=0&horizon=3&seed=9")
	require.Equal(t, http.StatusOK, rec.Code)

	var view SimulationView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 100, view.Paths)
	assert.Equal(t, []float64{50, 50, 50, 50}, view.P10)
	assert.Equal(t, []float64{50, 50, 50, 50}, view.P90)
}

func TestSimulationEndpoint_Validation(t *testing.T) {
	e := newTestServer(t, stubPrices{}, nil)

	rec, _ := do(t, e, http.MethodGet, "/api/simulation")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/simulation?price=50")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/simulation?symbol=GC=F&paths=1000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulationEndpoint_Symbol(t *testing.T) {
	e := newTestServer(t, stubPrices{"GC=F": series("GC=F", 45, 100)}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/simulation?symbol=GC=F&seed=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var view SimulationView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "GC=F", view.Symbol)
	assert.Len(t, view.P50, 6)
}

func TestClearCacheAndHealth(t *testing.T) {
	e := newTestServer(t, stubPrices{}, nil)

	rec, _ := do(t, e, http.MethodPost, "/api/cache/clear")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestToAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", models.ErrInsufficientData), http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", models.ErrInvalidModelInput), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, models.ErrEmptySeries), http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrUpstreamUnavailable), http.StatusServiceUnavailable},
		{&models.UnavailableError{RetryAfter: time.Minute, Err: models.ErrUpstreamUnavailable}, http.StatusServiceUnavailable},
		{xhttp.NotFoundError("gone"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, ToAppError(tc.err, time.Minute).Status, tc.err.Error())
	}
	assert.Equal(t, 90, ToAppError(models.ErrUpstreamUnavailable, 90*time.Second).Params["retry_after_seconds"])
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.72, round(2.7164, 2))
	assert.Equal(t, 0.0, round(math.NaN(), 2))
}
