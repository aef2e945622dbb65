package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	productionapp "github.com/kitchenops/backend/internal/application/production"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/identity"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/kitchenops/backend/internal/infrastructure/auth"
	"github.com/kitchenops/backend/internal/infrastructure/cache"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/kitchenops/backend/internal/infrastructure/event"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/infrastructure/persistence"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/kitchenops/backend/internal/interfaces/http/handler"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
	"github.com/kitchenops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/kitchenops/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Kitchen Production Costing API
//	@version		1.0
//	@description	Production runs, unit conversion and ingredient ledger for restaurant kitchens.

//	@contact.name	Kitchen Ops Engineering

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting kitchen costing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, providers.LogCore(log.Level()))
	}))
	productionMetrics, err := telemetry.NewProductionMetrics(providers.Meter(cfg.Telemetry.ServiceName), log)
	if err != nil {
		log.Fatal("Failed to create production metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: 200 * time.Millisecond,
		LogParams:     cfg.Telemetry.DBLogFullSQL,
	})
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Database.Driver == config.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbTraceCfg := telemetry.DefaultDBTracingConfig()
	dbTraceCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTraceCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Database.Driver != config.DriverPostgres {
		dbTraceCfg.DBSystem = cfg.Database.Driver
	}
	if err := telemetry.NewDBTracer(dbTraceCfg, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	recipeRepo := persistence.NewGormPrepRecipeRepository(db.DB)
	densityRepo := persistence.NewGormDensityRepository(db.DB)
	runRepo := persistence.NewGormProductionRunRepository(db.DB)
	ledgerRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	memberRepo := persistence.NewGormRestaurantMemberRepository(db.DB)

	// Unit conversion backed by the tiered density cache
	densities, closeDensityCache := cache.NewDensityCacheFromConfig(
		cfg.Redis,
		cfg.Costing.DensityCacheTTL,
		catalog.NewRepositoryDensityLookup(densityRepo),
		log,
	)
	defer func() {
		if err := closeDensityCache(); err != nil {
			log.Error("Error closing density cache", zap.Error(err))
		}
	}()
	converter := service.NewUnitConversionService(densities)
	access := identity.NewMembershipAccessChecker(memberRepo)

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewProductionAuditHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	inventoryService := inventoryapp.NewInventoryService(
		productRepo,
		ledgerRepo,
		persistence.NewGormLedgerScope(db.DB),
		converter,
		access,
		log,
	)
	inventoryService.SetProductionMetrics(productionMetrics)

	productionService := productionapp.NewProductionService(
		runRepo,
		recipeRepo,
		productRepo,
		ledgerRepo,
		persistence.NewGormTransactionScope(db.DB),
		converter,
		access,
		log,
	)
	productionService.SetEventPublisher(eventBus)
	productionService.SetProductionMetrics(productionMetrics)
	productionService.SetConservationTolerance(cfg.Costing.ConservationTolerance)

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWT)

	ginMode := gin.DebugMode
	if cfg.App.Env == "production" {
		ginMode = gin.ReleaseMode
	}
	r, err := router.New(router.Config{
		Mode:             ginMode,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		CORSAllowMethods: cfg.HTTP.CORSAllowMethods,
		CORSAllowHeaders: cfg.HTTP.CORSAllowHeaders,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		APIVersion:       "v1",
		SwaggerEnabled:   cfg.HTTP.SwaggerEnabled,
	}, log, handler.NewSystemHandler(db, version).Health)
	if err != nil {
		log.Fatal("Failed to create router", zap.Error(err))
	}

	engine := r.Register(
		handler.NewProductionHandler(productionService),
		handler.NewInventoryHandler(inventoryService),
	).Setup(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		Validator: jwtService,
		Logger:    log,
	}))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not drain", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	stats := densities.Stats()
	log.Info("Server exited gracefully",
		zap.Int64("density_local_hits", stats.LocalHits),
		zap.Int64("density_remote_hits", stats.RemoteHits),
		zap.Int64("density_misses", stats.Misses),
	)
}
