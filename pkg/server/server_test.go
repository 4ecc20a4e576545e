package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/fern/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:      "fern-test",
		Port:         0,
		MaxBodySize:  "1K",
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}
}

func TestServerMiddleware(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
	srv := New(testConfig(), logger)
	srv.Echo().POST("/echo", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("request id is assigned", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("request id is propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		req.Header.Set(echo.HeaderXRequestID, "abc")
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)

		assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("body limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 2048)))
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown route renders the error body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"request_id"`)
	})

	t.Run("metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		srv.Echo().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}
