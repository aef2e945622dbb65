// Package router assembles the gin engine for the kitchen API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouteRegistrar registers a group of routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config controls engine construction
type Config struct {
	Mode             string // gin mode: debug, release, test
	ServiceName      string
	TracingEnabled   bool
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	APIVersion       string
	SwaggerEnabled   bool // serve the API docs at /swagger/index.html
}

// Router owns the engine and the registrars mounted under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// New builds the engine with the standard middleware chain, the public
// /health route and, when enabled, the Swagger UI.
func New(cfg Config, log *zap.Logger, health gin.HandlerFunc) (*Router, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSAllowOrigins,
			AllowMethods: cfg.CORSAllowMethods,
			AllowHeaders: cfg.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", health)
	if cfg.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "ERR_NOT_FOUND", "message": "Route not found"}})
	})

	version := cfg.APIVersion
	if version == "" {
		version = "v1"
	}

	return &Router{engine: engine, apiVersion: version}, nil
}

// Register adds registrars to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar behind auth and returns the engine
func (r *Router) Setup(auth gin.HandlerFunc) *gin.Engine {
	api := r.engine.Group("/api/" + r.apiVersion)
	if auth != nil {
		api.Use(auth)
	}
	api.Use(middleware.SpanEnricher())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
