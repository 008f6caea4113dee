package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestNew expects production mode to drop debug messages and development mode to keep them.
func TestNew(t *testing.T) {
	prod, err := New("production")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))

	dev, err := New("dev")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}

// TestRequestLogger expects one entry per request with the request's method, path and status.
func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/fail"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "GET", entries[0].ContextMap()["method"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
