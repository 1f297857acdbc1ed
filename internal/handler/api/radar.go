package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"Halcon/internal/domain/models"
	svcmetrics "Halcon/internal/service/metrics"
	"Halcon/internal/services/montecarlo"
	"Halcon/internal/usecase"
	xhttp "Halcon/pkg/http"
	xlogger "Halcon/pkg/logger"
)

// RadarHandler serves screens, valuations and simulations over Echo.
type RadarHandler struct {
	logger    *xlogger.Logger
	data      *usecase.MarketData
	screener  *usecase.Screener
	valuator  *usecase.Valuator
	simulator *usecase.Simulator
	cooldown  time.Duration
}

func NewRadarHandler(
	logger *xlogger.Logger,
	data *usecase.MarketData,
	screener *usecase.Screener,
	valuator *usecase.Valuator,
	simulator *usecase.Simulator,
	cooldown time.Duration,
) *RadarHandler {
	return &RadarHandler{
		logger:    logger,
		data:      data,
		screener:  screener,
		valuator:  valuator,
		simulator: simulator,
		cooldown:  cooldown,
	}
}

func (h *RadarHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/screen", h.Screen)
	g.GET("/valuation", h.Valuation)
	g.GET("/simulation", h.Simulation)
	g.POST("/cache/clear", h.ClearCache)
}

func (h *RadarHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *RadarHandler) Screen(c echo.Context) error {
	start := time.Now()
	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.Observe("screen", start, "validation")
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	if req.Refresh {
		if err := h.data.Clear(ctx); err != nil {
			h.logger.Warn("refresh cache clear failed", xlogger.Error(err))
		}
	}

	screen, err := h.screener.Screen(ctx, req.SymbolList())
	if err != nil {
		return h.fail(c, "screen", start, err)
	}
	svcmetrics.Observe("screen", start, "")
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, PresentScreen(screen, req.Top))
}

func (h *RadarHandler) Valuation(c echo.Context) error {
	start := time.Now()
	req := &models.ValuationRequest{}
	if err := xhttp.BindOptionalFloats(c, map[string]**float64{
		"discount_rate":        &req.DiscountRate,
		"growth_rate":          &req.GrowthRate,
		"dividend_growth_rate": &req.DividendGrowthRate,
		"exit_multiple":        &req.ExitMultiple,
	}); err != nil {
		svcmetrics.Observe("valuation", start, "validation")
		return xhttp.AppErrorResponse(c, err)
	}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.Observe("valuation", start, "validation")
		return xhttp.BadRequestResponse(c, verr)
	}

	v, err := h.valuator.Value(c.Request().Context(), req.Symbol, req.Apply(h.valuator.Defaults()))
	if err != nil {
		return h.fail(c, "valuation", start, err)
	}
	svcmetrics.Observe("valuation", start, "")
	return xhttp.SuccessResponse(c, PresentValuation(v))
}

func (h *RadarHandler) Simulation(c echo.Context) error {
	start := time.Now()
	req := &models.SimulationRequest{}
	if err := xhttp.BindOptionalFloats(c, map[string]**float64{
		"price":      &req.Price,
		"volatility": &req.Volatility,
	}); err != nil {
		svcmetrics.Observe("simulation", start, "validation")
		return xhttp.AppErrorResponse(c, err)
	}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.Observe("simulation", start, "validation")
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		band *models.SimulationBand
		err  error
	)
	if req.Symbol == "" {
		if req.Volatility == nil {
			svcmetrics.Observe("simulation", start, "validation")
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("volatility is required when no symbol is given").WithParam("field", "volatility"))
		}
		band, err = h.simulator.SimulateRaw(montecarlo.Params{
			StartPrice: *req.Price,
			Volatility: *req.Volatility,
			Horizon:    req.Horizon,
			Paths:      req.Paths,
			Seed:       req.Seed,
		})
	} else {
		band, err = h.simulator.Simulate(c.Request().Context(), req.Symbol, usecase.SimOptions{
			Paths:      req.Paths,
			Horizon:    req.Horizon,
			Seed:       req.Seed,
			Price:      req.Price,
			Volatility: req.Volatility,
		})
	}
	if err != nil {
		return h.fail(c, "simulation", start, err)
	}
	svcmetrics.Observe("simulation", start, "")
	return xhttp.SuccessResponse(c, PresentSimulation(band))
}

// ClearCache is the "reconnect" action: the next request refetches upstream.
func (h *RadarHandler) ClearCache(c echo.Context) error {
	start := time.Now()
	if err := h.data.Clear(c.Request().Context()); err != nil {
		return h.fail(c, "cache_clear", start, err)
	}
	svcmetrics.Observe("cache_clear", start, "")
	return xhttp.SuccessResponse(c, map[string]bool{"cleared": true})
}

func (h *RadarHandler) fail(c echo.Context, endpoint string, start time.Time, err error) error {
	appErr := ToAppError(err, h.cooldown)
	svcmetrics.Observe(endpoint, start, appErr.Code)
	if appErr.Status >= http.StatusInternalServerError && appErr.Status != http.StatusServiceUnavailable {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Warn(endpoint+" failed", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ToAppError maps the domain error taxonomy onto HTTP errors. Upstream
// outages carry a retry hint in seconds.
func ToAppError(err error, cooldown time.Duration) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var unavailable *models.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return xhttp.ServiceUnavailableError("no market data available").WithRetryAfter(unavailable.RetryAfter).WithError(err)
	case errors.Is(err, models.ErrEmptySeries):
		return xhttp.NotFoundError("no data for symbol").WithError(err)
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.ServiceUnavailableError("market data provider unavailable").WithRetryAfter(cooldown).WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError("not enough history for this symbol").WithError(err)
	case errors.Is(err, models.ErrInvalidModelInput):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
