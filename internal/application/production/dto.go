package production

import (
	"time"

	"github.com/google/uuid"
	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	"github.com/kitchenops/backend/internal/domain/production"
	"github.com/shopspring/decimal"
)

// CreateRunRequest starts a production run
type CreateRunRequest struct {
	PrepRecipeID   uuid.UUID       `json:"prep_recipe_id" binding:"required"`
	TargetQuantity decimal.Decimal `json:"target_quantity" swaggertype:"string"`
	TargetUnit     string          `json:"target_unit" binding:"omitempty,unit_code"`
}

// RecordUsageRequest overrides an ingredient line's actual usage
type RecordUsageRequest struct {
	Quantity decimal.Decimal `json:"quantity" swaggertype:"string" binding:"required"`
	Unit     string          `json:"unit" binding:"omitempty,unit_code"`
}

// AdjustmentRequest is a waste or correction booked at completion
type AdjustmentRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Kind      string          `json:"kind" binding:"required,oneof=waste adjustment"`
	Quantity  decimal.Decimal `json:"quantity" swaggertype:"string" binding:"required"`
	Unit      string          `json:"unit" binding:"required,unit_code"`
	Reason    string          `json:"reason" binding:"max=255"`
}

// CompleteRunRequest completes a production run
type CompleteRunRequest struct {
	OutputQuantity decimal.Decimal     `json:"output_quantity" swaggertype:"string"`
	OutputUnit     string              `json:"output_unit" binding:"omitempty,unit_code"`
	Adjustments    []AdjustmentRequest `json:"adjustments" binding:"omitempty,dive"`
}

func (r CompleteRunRequest) toAdjustments() []production.Adjustment {
	out := make([]production.Adjustment, len(r.Adjustments))
	for i, a := range r.Adjustments {
		out[i] = production.Adjustment{
			ProductID: a.ProductID,
			Kind:      production.AdjustmentKind(a.Kind),
			Quantity:  a.Quantity,
			Unit:      a.Unit,
			Reason:    a.Reason,
		}
	}
	return out
}

// RunIngredientResponse is an ingredient line in API responses
type RunIngredientResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity" swaggertype:"string"`
	ExpectedUnit     string          `json:"expected_unit"`
	ActualQuantity   decimal.Decimal `json:"actual_quantity" swaggertype:"string"`
	ActualUnit       string          `json:"actual_unit"`
}

// ProductionRunResponse represents a production run in API responses
type ProductionRunResponse struct {
	ID                   uuid.UUID               `json:"id"`
	RestaurantID         uuid.UUID               `json:"restaurant_id"`
	PrepRecipeID         uuid.UUID               `json:"prep_recipe_id"`
	Status               string                  `json:"status"`
	TargetYieldQuantity  decimal.Decimal         `json:"target_yield_quantity" swaggertype:"string"`
	TargetYieldUnit      string                  `json:"target_yield_unit"`
	ActualOutputQuantity *decimal.Decimal        `json:"actual_output_quantity,omitempty" swaggertype:"string"`
	ActualOutputUnit     string                  `json:"actual_output_unit,omitempty"`
	TotalBatchCost       *decimal.Decimal        `json:"total_batch_cost,omitempty" swaggertype:"string"`
	CostPerUnit          *decimal.Decimal        `json:"cost_per_unit,omitempty" swaggertype:"string"`
	ZeroYield            bool                    `json:"zero_yield"`
	CreatedBy            uuid.UUID               `json:"created_by"`
	CompletedBy          *uuid.UUID              `json:"completed_by,omitempty"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	Ingredients          []RunIngredientResponse `json:"ingredients"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
	Version              int                     `json:"version"`
}

// CompletionResponse is the result of completing a production run
type CompletionResponse struct {
	Run      ProductionRunResponse              `json:"run"`
	Entries  []inventoryapp.LedgerEntryResponse `json:"entries"`
	Warnings []string                           `json:"warnings,omitempty"`
}

// ToProductionRunResponse converts a run to its response form
func ToProductionRunResponse(run *production.ProductionRun) ProductionRunResponse {
	lines := make([]RunIngredientResponse, len(run.Ingredients))
	for i, l := range run.Ingredients {
		lines[i] = RunIngredientResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			ExpectedQuantity: l.ExpectedQuantity,
			ExpectedUnit:     l.ExpectedUnit,
			ActualQuantity:   l.ActualQuantity,
			ActualUnit:       l.ActualUnit,
		}
	}
	return ProductionRunResponse{
		ID:                   run.ID,
		RestaurantID:         run.RestaurantID,
		PrepRecipeID:         run.PrepRecipeID,
		Status:               string(run.Status),
		TargetYieldQuantity:  run.TargetYieldQuantity,
		TargetYieldUnit:      run.TargetYieldUnit,
		ActualOutputQuantity: run.ActualOutputQuantity,
		ActualOutputUnit:     run.ActualOutputUnit,
		TotalBatchCost:       run.TotalBatchCost,
		CostPerUnit:          run.CostPerUnit,
		ZeroYield:            run.ZeroYield,
		CreatedBy:            run.CreatedBy,
		CompletedBy:          run.CompletedBy,
		CompletedAt:          run.CompletedAt,
		Ingredients:          lines,
		CreatedAt:            run.CreatedAt,
		UpdatedAt:            run.UpdatedAt,
		Version:              run.Version,
	}
}
