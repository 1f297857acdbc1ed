package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"status": "ok"})
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})
	e.GET("/busy", func(c echo.Context) error {
		return AppErrorResponse(c, ServiceUnavailableError("busy").WithRetryAfter(30*time.Second))
	})
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_RequestID(t *testing.T) {
	s := NewServer(routes{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	rec = serve(s, req)
	assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_RecoversPanics(t *testing.T) {
	s := NewServer(routes{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_RetryAfterHeader(t *testing.T) {
	s := NewServer(routes{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/busy", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(routes{}, WithCORS("https://radar.example"))

	pre := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	pre.Header.Set(echo.HeaderOrigin, "https://radar.example")
	rec := serve(s, pre)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://radar.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderOrigin, "https://radar.example")
	rec = serve(s, req)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlExposeHeaders), "Retry-After")

	other := httptest.NewRequest(http.MethodGet, "/ok", nil)
	other.Header.Set(echo.HeaderOrigin, "https://elsewhere.example")
	rec = serve(s, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := NewServer(routes{})
	serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "halcon_http_requests_total")

	off := NewServer(routes{}, WithMetricsPath(""))
	rec = serve(off, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ExtraMiddleware(t *testing.T) {
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.NoContent(http.StatusTooManyRequests)
		}
	}
	s := NewServer(routes{}, WithMiddleware(deny))
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAppError_WithRetryAfterRoundsUp(t *testing.T) {
	e := TooManyRequestsError("slow down").WithRetryAfter(1500 * time.Millisecond)
	assert.Equal(t, 2, e.Params[RetryAfterParam])
	assert.Equal(t, http.StatusTooManyRequests, e.Status)

	assert.Nil(t, InternalError("x").WithRetryAfter(0).Params)
}

type sampleRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Top    int    `query:"top" json:"top" default:"10" validate:"lte=100"`
}

func TestReadAndValidateRequest_UsesWireNames(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?top=500", nil), httptest.NewRecorder())
	errs := ReadAndValidateRequest(c, &sampleRequest{})
	require.Len(t, errs, 2)
	assert.Equal(t, "symbol", errs[0].Field)
	assert.Equal(t, "symbol is required", errs[0].Message)
	assert.Equal(t, "ERR_LTE", errs[1].Code)
	assert.Equal(t, "top must be at most 100", errs[1].Message)

	req := &sampleRequest{}
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?symbol=gc=f", nil), httptest.NewRecorder())
	assert.Nil(t, ReadAndValidateRequest(c, req))
	assert.Equal(t, 10, req.Top)
}
