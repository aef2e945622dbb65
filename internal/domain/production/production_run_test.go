package production

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func soupRecipe(t *testing.T) (*catalog.PrepRecipe, uuid.UUID) {
	t.Helper()
	recipe, err := catalog.NewPrepRecipe(uuid.New(), "Onion soup", dec("10"), "l")
	require.NoError(t, err)
	onion := uuid.New()
	_, err = recipe.AddIngredient(onion, dec("5"), "lb")
	require.NoError(t, err)
	return recipe, onion
}

func TestNewProductionRun(t *testing.T) {
	recipe, onion := soupRecipe(t)
	cook := uuid.New()

	t.Run("scales lines to target yield", func(t *testing.T) {
		run, err := NewProductionRun(recipe, dec("20"), "l", cook)
		require.NoError(t, err)
		assert.Equal(t, RunStatusInProgress, run.Status)
		assert.Equal(t, recipe.RestaurantID, run.RestaurantID)
		require.Len(t, run.Ingredients, 1)
		line := run.Ingredients[0]
		assert.Equal(t, onion, line.ProductID)
		assert.True(t, line.ExpectedQuantity.Equal(dec("10")))
		assert.True(t, line.ActualQuantity.Equal(line.ExpectedQuantity))
		assert.Equal(t, "lb", line.ActualUnit)
		assert.Equal(t, run.ID, line.ProductionRunID)
		assert.Nil(t, run.CostPerUnit)
		require.Len(t, run.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductionRunCreated, run.GetDomainEvents()[0].EventType())
	})

	t.Run("zero target uses blueprint yield", func(t *testing.T) {
		run, err := NewProductionRun(recipe, decimal.Zero, "", cook)
		require.NoError(t, err)
		assert.True(t, run.TargetYieldQuantity.Equal(dec("10")))
		assert.Equal(t, "l", run.TargetYieldUnit)
		assert.True(t, run.Ingredients[0].ExpectedQuantity.Equal(dec("5")))
	})

	t.Run("rejects negative target", func(t *testing.T) {
		_, err := NewProductionRun(recipe, dec("-1"), "l", cook)
		assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
	})

	t.Run("rejects empty recipe", func(t *testing.T) {
		empty, err := catalog.NewPrepRecipe(uuid.New(), "Nothing", dec("1"), "l")
		require.NoError(t, err)
		_, err = NewProductionRun(empty, dec("1"), "l", cook)
		assert.Error(t, err)
	})

	t.Run("requires creator", func(t *testing.T) {
		_, err := NewProductionRun(recipe, dec("1"), "l", uuid.Nil)
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
	})
}

func TestProductionRun_RecordActualUsage(t *testing.T) {
	recipe, _ := soupRecipe(t)
	run, err := NewProductionRun(recipe, dec("10"), "l", uuid.New())
	require.NoError(t, err)
	lineID := run.Ingredients[0].ID

	line, err := run.RecordActualUsage(lineID, dec("80"), "oz")
	require.NoError(t, err)
	assert.True(t, line.ActualQuantity.Equal(dec("80")))
	assert.Equal(t, "oz", line.ActualUnit)
	assert.True(t, line.ExpectedQuantity.Equal(dec("5")), "expected figures are kept")

	_, err = run.RecordActualUsage(lineID, dec("-1"), "")
	assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))

	_, err = run.RecordActualUsage(uuid.New(), dec("1"), "")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, run.Complete(uuid.New(), dec("10"), "l", CostAllocation{}))
	_, err = run.RecordActualUsage(lineID, dec("1"), "")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestProductionRun_Complete(t *testing.T) {
	recipe, onion := soupRecipe(t)
	run, err := NewProductionRun(recipe, dec("10"), "l", uuid.New())
	require.NoError(t, err)
	run.ClearDomainEvents()
	assert.True(t, run.HasIngredient(onion))
	assert.False(t, run.HasIngredient(uuid.New()))

	finisher := uuid.New()
	alloc := CostAllocation{TotalBatchCost: dec("24.95"), OutputUnitCost: dec("2.495")}
	require.NoError(t, run.Complete(finisher, dec("10"), "l", alloc))

	assert.True(t, run.IsCompleted())
	require.NotNil(t, run.CostPerUnit)
	assert.True(t, run.CostPerUnit.Equal(dec("2.495")))
	assert.True(t, run.TotalBatchCost.Equal(dec("24.95")))
	assert.Equal(t, finisher, *run.CompletedBy)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, 2, run.Version)

	events := run.GetDomainEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(*ProductionRunCompletedEvent)
	require.True(t, ok)
	assert.True(t, completed.CostPerUnit.Equal(dec("2.495")))
	assert.Equal(t, finisher, completed.CompletedBy)

	err = run.Complete(finisher, dec("10"), "l", CostAllocation{OutputUnitCost: dec("9")})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.True(t, run.CostPerUnit.Equal(dec("2.495")), "cost per unit is set only once")
}

func TestAdjustment_Validate(t *testing.T) {
	product := uuid.New()

	tests := []struct {
		name     string
		adj      Adjustment
		wantCode string
		sign     int
	}{
		{"waste", Adjustment{ProductID: product, Kind: AdjustmentWaste, Quantity: dec("1"), Unit: "lb"}, "", -1},
		{"positive correction", Adjustment{ProductID: product, Kind: AdjustmentCorrection, Quantity: dec("2"), Unit: "l"}, "", 1},
		{"negative correction", Adjustment{ProductID: product, Kind: AdjustmentCorrection, Quantity: dec("-2"), Unit: "l"}, "", -1},
		{"negative waste", Adjustment{ProductID: product, Kind: AdjustmentWaste, Quantity: dec("-1"), Unit: "lb"}, shared.CodeInvalidQuantity, 0},
		{"zero correction", Adjustment{ProductID: product, Kind: AdjustmentCorrection, Quantity: decimal.Zero, Unit: "l"}, shared.CodeInvalidQuantity, 0},
		{"missing product", Adjustment{Kind: AdjustmentWaste, Quantity: dec("1"), Unit: "lb"}, shared.CodeInvalidAdjustment, 0},
		{"unknown kind", Adjustment{ProductID: product, Kind: "spill", Quantity: dec("1"), Unit: "lb"}, shared.CodeInvalidAdjustment, 0},
		{"missing unit", Adjustment{ProductID: product, Kind: AdjustmentWaste, Quantity: dec("1")}, "INVALID_UNIT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.adj.Validate()
			if tt.wantCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantCode, de.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sign, tt.adj.Sign())
			assert.True(t, tt.adj.Magnitude().IsPositive())
		})
	}
}
