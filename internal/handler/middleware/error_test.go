//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/handler/middleware"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/testutil/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("public error without a written body is rendered", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		r.GET("/x", func(c *gin.Context) {
			_ = c.Error(&gin.Error{
				Err:  errors.New("nope"),
				Type: gin.ErrorTypePublic,
				Meta: httperr.NewResponse(http.StatusConflict, httperr.CodeNotPayable, "not payable", nil),
			})
		})

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/x", nil, "")
		body := httptest.AssertErrorResponse(t, rec, http.StatusConflict, httperr.CodeNotPayable)
		assert.Equal(t, "not payable", body.Error.Message)
	})

	t.Run("private errors fall back to 500", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		r.GET("/x", func(c *gin.Context) {
			_ = c.Error(errors.New("hidden"))
		})

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/x", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, httperr.CodeInternal)
	})

	t.Run("already written responses are left alone", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		r.GET("/x", func(c *gin.Context) {
			httperr.AbortWithError(c, http.StatusNotFound, errors.New("gone"), httperr.CodeNotFound, "Booking not found", nil)
		})

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/x", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusNotFound, httperr.CodeNotFound)
	})
}

func TestAbortWithErrorRecordsPublicError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var recorded []*gin.Error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = c.Errors.ByType(gin.ErrorTypePublic)
	})
	r.GET("/x", func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusConflict, errors.New("paid"), httperr.CodeNotPayable, "not payable", nil)
	})

	rec := httptest.PerformRequest(t, r, http.MethodGet, "/x", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusConflict, httperr.CodeNotPayable)

	require.Len(t, recorded, 1)
	resp, ok := recorded[0].Meta.(httperr.Response)
	require.True(t, ok, "meta carries the rendered response")
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, httperr.CodeNotPayable, resp.Error.Code)
}

func TestCustomRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CustomRecovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	rec := httptest.PerformRequest(t, r, http.MethodGet, "/panic", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, httperr.CodeInternal)
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := middleware.NewLogger(config.NewTestConfig().Log)
	r := gin.New()
	r.Use(logger.LoggingMiddleware())
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	t.Run("caller request id is echoed", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/id", nil, "", map[string]string{"X-Request-ID": "req-123"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "req-123", rec.Body.String())
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("missing request id is generated", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/id", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Body.String())
		assert.Equal(t, rec.Body.String(), rec.Header().Get("X-Request-ID"))
	})
}
