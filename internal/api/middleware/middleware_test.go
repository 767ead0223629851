package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/pricetracker/internal/api/middleware"
	loggermocks "github.com/jonesrussell/pricetracker/testutils/mocks/logger"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestID_Generated(t *testing.T) {
	router := newRouter()
	router.Use(middleware.RequestID())
	router.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString("request_id"))
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_ClientProvided(t *testing.T) {
	router := newRouter()
	router.Use(middleware.RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-id-123")
	router.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestLogger_LogsRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := loggermocks.NewMockInterface(ctrl)
	mockLogger.EXPECT().Info("Request handled",
		"request_id", gomock.Any(),
		"method", http.MethodGet,
		"path", "/products",
		"status", http.StatusOK,
		"duration", gomock.Any(),
	)

	router := newRouter()
	router.Use(middleware.RequestID(), middleware.RequestLogger(mockLogger))
	router.GET("/products", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(rec, req)
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := loggermocks.NewMockInterface(ctrl)
	mockLogger.EXPECT().Error("Request panicked",
		"request_id", gomock.Any(),
		"path", "/boom",
		"panic", gomock.Any(),
	)

	router := newRouter()
	router.Use(middleware.RequestID(), middleware.Recovery(mockLogger))
	router.GET("/boom", func(_ *gin.Context) {
		panic("unexpected state")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
