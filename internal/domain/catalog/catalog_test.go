package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewProduct(t *testing.T) {
	restaurantID := uuid.New()

	tests := []struct {
		name         string
		restaurantID uuid.UUID
		productName  string
		unit         string
		cost         decimal.Decimal
		wantCode     string
	}{
		{"valid", restaurantID, "Onions", "lb", dec("4.99"), ""},
		{"missing restaurant", uuid.Nil, "Onions", "lb", dec("1"), "INVALID_RESTAURANT"},
		{"blank name", restaurantID, "  ", "lb", dec("1"), "INVALID_NAME"},
		{"blank unit", restaurantID, "Onions", "", dec("1"), "INVALID_UNIT"},
		{"negative cost", restaurantID, "Onions", "lb", dec("-1"), "INVALID_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.restaurantID, tt.productName, tt.unit, tt.cost)
			if tt.wantCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantCode, de.Code)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.CurrentStock.IsZero())
			assert.Equal(t, 1, p.Version)
			assert.Equal(t, restaurantID, p.RestaurantID)
		})
	}
}

func TestProduct_PurchaseUnitSpec(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Buns", "bag", dec("12"))
	require.NoError(t, err)
	require.NoError(t, p.WithSize(dec("50"), "each"))
	p.WithDensityClass(" Bread ")

	spec := p.PurchaseUnitSpec()
	assert.Equal(t, p.ID, spec.ProductID)
	assert.Equal(t, "bag", spec.PurchaseUnit)
	require.NotNil(t, spec.SizeValue)
	assert.True(t, spec.SizeValue.Equal(dec("50")))
	assert.Equal(t, "each", spec.SizeUnit)
	assert.Equal(t, "bread", spec.DensityClass)

	assert.Error(t, p.WithSize(decimal.Zero, "each"))
}

func TestProduct_UpdateCost(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Oil", "l", dec("3"))
	require.NoError(t, err)

	require.NoError(t, p.UpdateCost(dec("3.5")))
	assert.True(t, p.CostPerUnit.Equal(dec("3.5")))
	assert.Equal(t, 2, p.Version)
	err = p.UpdateCost(dec("-0.01"))
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_COST", de.Code)
	assert.True(t, p.CostPerUnit.Equal(dec("3.5")))
}

func TestPrepRecipe_AddIngredient(t *testing.T) {
	r, err := NewPrepRecipe(uuid.New(), "Onion soup", dec("10"), "l")
	require.NoError(t, err)
	assert.Error(t, r.Validate())

	onion := uuid.New()
	line, err := r.AddIngredient(onion, dec("5"), "lb")
	require.NoError(t, err)
	assert.Equal(t, r.ID, line.PrepRecipeID)
	assert.Equal(t, 0, line.SortOrder)

	_, err = r.AddIngredient(onion, decimal.Zero, "lb")
	assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
	_, err = r.AddIngredient(uuid.Nil, dec("1"), "lb")
	assert.Error(t, err)

	_, err = r.AddIngredient(onion, dec("1"), "oz")
	require.NoError(t, err)
	assert.NoError(t, r.Validate())
	assert.Equal(t, []uuid.UUID{onion}, r.ProductIDs())
}

func TestPrepRecipe_ScaleFactor(t *testing.T) {
	r, err := NewPrepRecipe(uuid.New(), "Stock", dec("10"), "l")
	require.NoError(t, err)

	tests := []struct {
		name   string
		qty    decimal.Decimal
		unit   string
		factor string
	}{
		{"same unit", dec("20"), "l", "2"},
		{"no unit given", dec("5"), "", "0.5"},
		{"same dimension", dec("2500"), "ml", "0.25"},
		{"different dimension", dec("3"), "kg", "1"},
		{"unknown unit", dec("3"), "batch", "1"},
		{"zero target", decimal.Zero, "l", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, r.ScaleFactor(tt.qty, tt.unit).Equal(dec(tt.factor)))
		})
	}
}

type fakeDensityRepo struct {
	product map[uuid.UUID]*IngredientDensity
	class   map[string]*IngredientDensity
	err     error
}

func (f *fakeDensityRepo) FindForProduct(_ context.Context, id uuid.UUID) (*IngredientDensity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.product[id]; ok {
		return d, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeDensityRepo) FindForClass(_ context.Context, class string) (*IngredientDensity, error) {
	if d, ok := f.class[class]; ok {
		return d, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeDensityRepo) Save(context.Context, *IngredientDensity) error { return nil }

func TestRepositoryDensityLookup(t *testing.T) {
	honey := uuid.New()
	productRow, err := NewProductDensity(honey, dec("1.42"))
	require.NoError(t, err)
	classRow, err := NewClassDensity("Syrup", dec("1.3"))
	require.NoError(t, err)
	assert.Equal(t, "syrup", classRow.DensityClass)

	lookup := NewRepositoryDensityLookup(&fakeDensityRepo{
		product: map[uuid.UUID]*IngredientDensity{honey: productRow},
		class:   map[string]*IngredientDensity{"syrup": classRow},
	})
	ctx := context.Background()

	d, found, err := lookup.GramsPerMilliliter(ctx, honey, "syrup")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, d.Equal(dec("1.42")), "product row wins over class row")

	d, found, err = lookup.GramsPerMilliliter(ctx, uuid.New(), "syrup")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, d.Equal(dec("1.3")))

	_, found, err = lookup.GramsPerMilliliter(ctx, uuid.New(), "")
	require.NoError(t, err)
	assert.False(t, found)

	boom := errors.New("db down")
	_, _, err = NewRepositoryDensityLookup(&fakeDensityRepo{err: boom}).GramsPerMilliliter(ctx, honey, "")
	assert.ErrorIs(t, err, boom)
}
