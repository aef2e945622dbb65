package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are created without a meter.
var ErrMeterNil = errors.New("NewProductionMetrics: meter cannot be nil")

// ProductionMetrics records production run and ledger activity.
// A nil *ProductionMetrics is valid and records nothing.
type ProductionMetrics struct {
	logger *zap.Logger

	runsCompleted       metric.Int64Counter
	zeroYieldRuns       metric.Int64Counter
	conversions         metric.Int64Counter
	conversionFallbacks metric.Int64Counter
	ledgerEntries       metric.Int64Counter
	batchCost           metric.Float64Histogram
}

// Attribute keys shared by the production instruments.
var (
	AttrRestaurantID     = attribute.Key("restaurant_id")
	AttrConversionMethod = attribute.Key("conversion_method")
	AttrTransactionType  = attribute.Key("transaction_type")
	AttrZeroYield        = attribute.Key("zero_yield")
)

// CostBuckets are bucket boundaries for batch cost histograms.
var CostBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

// NewProductionMetrics creates the production instruments on meter.
func NewProductionMetrics(meter metric.Meter, logger *zap.Logger) (*ProductionMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProductionMetrics{logger: logger}
	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
		unit       string
	}{
		{&pm.runsCompleted, "production_runs_completed_total", "Total number of completed production runs", "{run}"},
		{&pm.zeroYieldRuns, "production_runs_zero_yield_total", "Completed production runs that produced nothing", "{run}"},
		{&pm.conversions, "unit_conversions_total", "Unit conversions by resolution method", "{conversion}"},
		{&pm.conversionFallbacks, "unit_conversion_fallback_total", "Conversions that fell back to a 1:1 ratio", "{conversion}"},
		{&pm.ledgerEntries, "inventory_ledger_entries_total", "Inventory ledger entries posted", "{entry}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	var err error
	pm.batchCost, err = meter.Float64Histogram("production_batch_cost",
		metric.WithDescription("Total ingredient cost of completed batches"),
		metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(CostBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("histogram production_batch_cost: %w", err)
	}

	return pm, nil
}

// RecordConversion counts a conversion and, separately, lossy fallbacks.
func (pm *ProductionMetrics) RecordConversion(ctx context.Context, restaurantID uuid.UUID, method service.ConversionMethod) {
	if pm == nil {
		return
	}
	restaurant := AttrRestaurantID.String(restaurantID.String())
	pm.conversions.Add(ctx, 1, metric.WithAttributes(restaurant, AttrConversionMethod.String(string(method))))
	if method.IsLossy() {
		pm.conversionFallbacks.Add(ctx, 1, metric.WithAttributes(restaurant))
	}
}

// RecordLedgerEntry counts a posted ledger entry.
func (pm *ProductionMetrics) RecordLedgerEntry(ctx context.Context, restaurantID uuid.UUID, txType string) {
	if pm == nil {
		return
	}
	pm.ledgerEntries.Add(ctx, 1, metric.WithAttributes(
		AttrRestaurantID.String(restaurantID.String()),
		AttrTransactionType.String(txType),
	))
}

// RecordRunCompleted records a completed run and its batch cost.
func (pm *ProductionMetrics) RecordRunCompleted(ctx context.Context, restaurantID uuid.UUID, totalCost decimal.Decimal, zeroYield bool) {
	if pm == nil {
		return
	}
	restaurant := AttrRestaurantID.String(restaurantID.String())
	pm.runsCompleted.Add(ctx, 1, metric.WithAttributes(restaurant, AttrZeroYield.Bool(zeroYield)))
	pm.batchCost.Record(ctx, totalCost.InexactFloat64(), metric.WithAttributes(restaurant))
	if zeroYield {
		pm.zeroYieldRuns.Add(ctx, 1, metric.WithAttributes(restaurant))
	}
}
