package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestNewProductionMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewProductionMetrics(nil, zap.NewNop())
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, pm)
}

func TestProductionMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	pm, err := telemetry.NewProductionMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	ctx := context.Background()
	restaurantID := uuid.New()

	pm.RecordConversion(ctx, restaurantID, service.MethodDirect)
	pm.RecordConversion(ctx, restaurantID, service.MethodFallback)
	pm.RecordLedgerEntry(ctx, restaurantID, "usage")
	pm.RecordLedgerEntry(ctx, restaurantID, "transfer")
	pm.RecordRunCompleted(ctx, restaurantID, decimal.RequireFromString("24.95"), false)
	pm.RecordRunCompleted(ctx, restaurantID, decimal.RequireFromString("3"), true)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["unit_conversions_total"])
	assert.Equal(t, int64(1), sums["unit_conversion_fallback_total"])
	assert.Equal(t, int64(2), sums["inventory_ledger_entries_total"])
	assert.Equal(t, int64(2), sums["production_runs_completed_total"])
	assert.Equal(t, int64(1), sums["production_runs_zero_yield_total"])
}

func TestProductionMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.ProductionMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordConversion(ctx, uuid.New(), service.MethodFallback)
		pm.RecordLedgerEntry(ctx, uuid.New(), "usage")
		pm.RecordRunCompleted(ctx, uuid.New(), decimal.Zero, true)
	})
}
