package production

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RunStatus is the lifecycle state of a production run
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
)

// ProductionRun is one execution of a prep recipe. It is created in progress
// and moves to completed exactly once; CostPerUnit is fixed at that moment.
type ProductionRun struct {
	shared.RestaurantAggregateRoot
	PrepRecipeID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status               RunStatus                 `gorm:"type:varchar(20);not null;default:'in_progress';index"`
	TargetYieldQuantity  decimal.Decimal           `gorm:"type:decimal(24,10);not null"`
	TargetYieldUnit      string                    `gorm:"type:varchar(30);not null"`
	ActualOutputQuantity *decimal.Decimal          `gorm:"type:decimal(24,10)"`
	ActualOutputUnit     string                    `gorm:"type:varchar(30)"`
	TotalBatchCost       *decimal.Decimal          `gorm:"type:decimal(24,10)"`
	CostPerUnit          *decimal.Decimal          `gorm:"type:decimal(24,10)"`
	ZeroYield            bool                      `gorm:"not null;default:false"`
	CreatedBy            uuid.UUID                 `gorm:"type:uuid;not null"`
	CompletedBy          *uuid.UUID                `gorm:"type:uuid"`
	CompletedAt          *time.Time                `gorm:""`
	Ingredients          []ProductionRunIngredient `gorm:"foreignKey:ProductionRunID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductionRun) TableName() string {
	return "production_runs"
}

// ProductionRunIngredient is a blueprint line scaled to the run's target yield.
// Actual figures start equal to expected and are what completion consumes.
type ProductionRunIngredient struct {
	shared.BaseEntity
	ProductionRunID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpectedQuantity decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	ExpectedUnit     string          `gorm:"type:varchar(30);not null"`
	ActualQuantity   decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	ActualUnit       string          `gorm:"type:varchar(30);not null"`
	SortOrder        int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductionRunIngredient) TableName() string {
	return "production_run_ingredients"
}

// NewProductionRun starts a run from a blueprint, scaling each line to the target yield.
func NewProductionRun(recipe *catalog.PrepRecipe, targetQuantity decimal.Decimal, targetUnit string, createdBy uuid.UUID) (*ProductionRun, error) {
	if recipe == nil {
		return nil, shared.NewDomainError("INVALID_RECIPE", "Recipe is required")
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	if targetQuantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Target yield cannot be negative")
	}
	if targetQuantity.IsZero() {
		targetQuantity = recipe.YieldQuantity
	}
	targetUnit = strings.TrimSpace(targetUnit)
	if targetUnit == "" {
		targetUnit = recipe.YieldUnit
	}
	if createdBy == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	run := &ProductionRun{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(recipe.RestaurantID),
		PrepRecipeID:            recipe.ID,
		Status:                  RunStatusInProgress,
		TargetYieldQuantity:     targetQuantity,
		TargetYieldUnit:         targetUnit,
		CreatedBy:               createdBy,
	}

	factor := recipe.ScaleFactor(targetQuantity, targetUnit)
	for i, line := range recipe.Ingredients {
		expected := line.Quantity.Mul(factor)
		run.Ingredients = append(run.Ingredients, ProductionRunIngredient{
			BaseEntity:       shared.NewBaseEntity(),
			ProductionRunID:  run.ID,
			ProductID:        line.ProductID,
			ExpectedQuantity: expected,
			ExpectedUnit:     line.Unit,
			ActualQuantity:   expected,
			ActualUnit:       line.Unit,
			SortOrder:        i,
		})
	}

	run.AddDomainEvent(NewProductionRunCreatedEvent(run))
	return run, nil
}

// IsCompleted reports whether the run has been completed
func (r *ProductionRun) IsCompleted() bool {
	return r.Status == RunStatusCompleted
}

// RecordActualUsage overrides the quantity actually used on an ingredient line.
func (r *ProductionRun) RecordActualUsage(lineID uuid.UUID, quantity decimal.Decimal, unit string) (*ProductionRunIngredient, error) {
	if r.IsCompleted() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Production run is already completed")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Actual quantity cannot be negative")
	}
	for i := range r.Ingredients {
		if r.Ingredients[i].ID != lineID {
			continue
		}
		line := &r.Ingredients[i]
		line.ActualQuantity = quantity
		if u := strings.TrimSpace(unit); u != "" {
			line.ActualUnit = u
		}
		line.Touch()
		r.Touch()
		return line, nil
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Ingredient line not found on this production run")
}

// HasIngredient reports whether productID is one of the run's ingredients
func (r *ProductionRun) HasIngredient(productID uuid.UUID) bool {
	for _, line := range r.Ingredients {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// Complete moves the run to completed and records its final costing.
func (r *ProductionRun) Complete(completedBy uuid.UUID, outputQuantity decimal.Decimal, outputUnit string, allocation CostAllocation) error {
	if r.IsCompleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Production run is already completed")
	}
	if completedBy == uuid.Nil {
		return shared.ErrUnauthorized
	}
	if outputQuantity.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Output quantity cannot be negative")
	}

	now := time.Now()
	total := allocation.TotalBatchCost
	unitCost := allocation.OutputUnitCost
	r.Status = RunStatusCompleted
	r.ActualOutputQuantity = &outputQuantity
	r.ActualOutputUnit = strings.TrimSpace(outputUnit)
	r.TotalBatchCost = &total
	r.CostPerUnit = &unitCost
	r.ZeroYield = allocation.ZeroYield
	r.CompletedBy = &completedBy
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewProductionRunCompletedEvent(r))
	return nil
}
