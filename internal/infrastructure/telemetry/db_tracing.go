package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool          // Include bound variables in span statements. Development only.
	SlowQueryThreshold time.Duration // Default: 200ms
	DBSystem           string        // Default: "postgresql"
}

// DefaultDBTracingConfig returns the disabled, variable-free configuration.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBSystem:           "postgresql",
	}
}

type queryStartKey struct{}

// DBTracer registers otelgorm plus a slow query detector on a GORM DB.
type DBTracer struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracer creates a DBTracer. A nil logger discards slow query warnings.
func NewDBTracer(cfg DBTracingConfig, logger *zap.Logger) *DBTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracer{config: cfg, logger: logger}
}

// Register installs the plugin and callbacks. It is a no-op when tracing is disabled.
func (t *DBTracer) Register(db *gorm.DB) error {
	if !t.config.Enabled {
		t.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.config.DBSystem)}
	if !t.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("kitchen_timing:before_create", t.before); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("kitchen_timing:before_query", t.before); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("kitchen_timing:before_update", t.before); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("kitchen_timing:before_delete", t.before); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("kitchen_timing:before_row", t.before); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("kitchen_timing:before_raw", t.before); err != nil {
		return err
	}

	if err := cb.Create().After("gorm:create").Register("kitchen_timing:after_create", t.after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("kitchen_timing:after_query", t.after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("kitchen_timing:after_update", t.after); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("kitchen_timing:after_delete", t.after); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("kitchen_timing:after_row", t.after); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("kitchen_timing:after_raw", t.after); err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", t.config.LogFullSQL),
		zap.Duration("slow_query_threshold", t.config.SlowQueryThreshold),
		zap.String("db_system", t.config.DBSystem),
	)
	return nil
}

func (t *DBTracer) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *DBTracer) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	recording := span.IsRecording()

	if recording {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= t.config.SlowQueryThreshold {
		return
	}
	if recording {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	t.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
		zap.String("trace_id", GetTraceID(ctx)),
	)
}
