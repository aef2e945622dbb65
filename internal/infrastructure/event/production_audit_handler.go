package event

import (
	"context"

	"github.com/kitchenops/backend/internal/domain/production"
	"github.com/kitchenops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductionAuditHandler writes a structured audit line for each production run
// lifecycle event.
type ProductionAuditHandler struct {
	logger *zap.Logger
}

// NewProductionAuditHandler creates the audit handler
func NewProductionAuditHandler(logger *zap.Logger) *ProductionAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionAuditHandler{logger: logger.Named("production_audit")}
}

// EventTypes implements shared.EventHandler
func (h *ProductionAuditHandler) EventTypes() []string {
	return []string{
		production.EventTypeProductionRunCreated,
		production.EventTypeProductionRunCompleted,
	}
}

// Handle implements shared.EventHandler
func (h *ProductionAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	base := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("run_id", event.AggregateID().String()),
		zap.String("restaurant_id", event.RestaurantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *production.ProductionRunCreatedEvent:
		h.logger.Info("Production run started", append(base,
			zap.String("prep_recipe_id", e.PrepRecipeID.String()),
			zap.String("target_quantity", e.TargetQuantity.String()),
			zap.String("target_unit", e.TargetUnit),
		)...)
	case *production.ProductionRunCompletedEvent:
		fields := append(base,
			zap.String("prep_recipe_id", e.PrepRecipeID.String()),
			zap.String("output_quantity", e.OutputQuantity.String()),
			zap.String("output_unit", e.OutputUnit),
			zap.String("total_batch_cost", e.TotalBatchCost.String()),
			zap.String("cost_per_unit", e.CostPerUnit.String()),
			zap.String("completed_by", e.CompletedBy.String()),
		)
		if e.ZeroYield {
			h.logger.Warn("Production run completed with zero yield", fields...)
			return nil
		}
		h.logger.Info("Production run completed", fields...)
	default:
		h.logger.Debug("Ignoring unexpected event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*ProductionAuditHandler)(nil)
