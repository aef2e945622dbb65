package production

import (
	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeProductionRun = "ProductionRun"

	EventTypeProductionRunCreated   = "production_run.created"
	EventTypeProductionRunCompleted = "production_run.completed"
)

// ProductionRunCreatedEvent is raised when a run is started
type ProductionRunCreatedEvent struct {
	shared.BaseDomainEvent
	PrepRecipeID   uuid.UUID       `json:"prep_recipe_id"`
	TargetQuantity decimal.Decimal `json:"target_quantity"`
	TargetUnit     string          `json:"target_unit"`
}

// NewProductionRunCreatedEvent creates the event for run
func NewProductionRunCreatedEvent(run *ProductionRun) *ProductionRunCreatedEvent {
	return &ProductionRunCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionRunCreated, AggregateTypeProductionRun, run.ID, run.RestaurantID),
		PrepRecipeID:    run.PrepRecipeID,
		TargetQuantity:  run.TargetYieldQuantity,
		TargetUnit:      run.TargetYieldUnit,
	}
}

// ProductionRunCompletedEvent is raised once a run's ledger postings are committed
type ProductionRunCompletedEvent struct {
	shared.BaseDomainEvent
	PrepRecipeID   uuid.UUID       `json:"prep_recipe_id"`
	OutputQuantity decimal.Decimal `json:"output_quantity"`
	OutputUnit     string          `json:"output_unit"`
	TotalBatchCost decimal.Decimal `json:"total_batch_cost"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	ZeroYield      bool            `json:"zero_yield"`
	CompletedBy    uuid.UUID       `json:"completed_by"`
}

// NewProductionRunCompletedEvent creates the event for a completed run
func NewProductionRunCompletedEvent(run *ProductionRun) *ProductionRunCompletedEvent {
	e := &ProductionRunCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionRunCompleted, AggregateTypeProductionRun, run.ID, run.RestaurantID),
		PrepRecipeID:    run.PrepRecipeID,
		OutputUnit:      run.ActualOutputUnit,
		ZeroYield:       run.ZeroYield,
	}
	if run.ActualOutputQuantity != nil {
		e.OutputQuantity = *run.ActualOutputQuantity
	}
	if run.TotalBatchCost != nil {
		e.TotalBatchCost = *run.TotalBatchCost
	}
	if run.CostPerUnit != nil {
		e.CostPerUnit = *run.CostPerUnit
	}
	if run.CompletedBy != nil {
		e.CompletedBy = *run.CompletedBy
	}
	return e
}
