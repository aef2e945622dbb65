package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/kitchenops/backend/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	r, err := New(Config{Mode: gin.TestMode}, zap.NewNop(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	require.NoError(t, err)

	requireKey := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer ok" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
	return r.Register(pingRoutes{}).Setup(requireKey)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	w := httptest.NewRecorder()
	newTestEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	engine := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouter_NoRoute(t *testing.T) {
	w := httptest.NewRecorder()
	newTestEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestRouter_Swagger(t *testing.T) {
	health := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("enabled", func(t *testing.T) {
		r, err := New(Config{Mode: gin.TestMode, SwaggerEnabled: true}, zap.NewNop(), health)
		require.NoError(t, err)
		engine := r.Setup(nil)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Kitchen Production Costing API")
		assert.Contains(t, w.Body.String(), "/production-runs/{id}/complete")
	})

	t.Run("disabled", func(t *testing.T) {
		r, err := New(Config{Mode: gin.TestMode}, zap.NewNop(), health)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r.Setup(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
