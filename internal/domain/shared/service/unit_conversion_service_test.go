package service

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

type stubDensities struct {
	byProduct map[uuid.UUID]decimal.Decimal
	byClass   map[string]decimal.Decimal
	err       error
}

func (s stubDensities) GramsPerMilliliter(_ context.Context, productID uuid.UUID, class string) (decimal.Decimal, bool, error) {
	if s.err != nil {
		return decimal.Zero, false, s.err
	}
	if d, ok := s.byProduct[productID]; ok {
		return d, true, nil
	}
	if d, ok := s.byClass[class]; ok {
		return d, true, nil
	}
	return decimal.Zero, false, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func size(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimalNear(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	assert.InDelta(t, want.InexactFloat64(), got.InexactFloat64(), 1e-9, "want %s got %s", want, got)
}

func TestUnitConversionService_ToPurchaseUnits(t *testing.T) {
	flour := uuid.New()
	oil := uuid.New()
	svc := NewUnitConversionService(stubDensities{
		byProduct: map[uuid.UUID]decimal.Decimal{oil: dec("0.92")},
		byClass:   map[string]decimal.Decimal{"flour": dec("0.53")},
	})

	tests := []struct {
		name       string
		quantity   string
		sourceUnit string
		spec       PurchaseUnitSpec
		want       string
		wantMethod ConversionMethod
	}{
		{
			name:       "direct match",
			quantity:   "5",
			sourceUnit: "lb",
			spec:       PurchaseUnitSpec{PurchaseUnit: "lb"},
			want:       "5",
			wantMethod: MethodDirect,
		},
		{
			name:       "direct match ignores case and aliases",
			quantity:   "10",
			sourceUnit: "Liters",
			spec:       PurchaseUnitSpec{PurchaseUnit: "L"},
			want:       "10",
			wantMethod: MethodDirect,
		},
		{
			name:       "direct match on container name",
			quantity:   "2",
			sourceUnit: "Case",
			spec:       PurchaseUnitSpec{PurchaseUnit: "case", SizeValue: size("12"), SizeUnit: "each"},
			want:       "2",
			wantMethod: MethodDirect,
		},
		{
			name:       "fluid ounce into a 750 ml bottle",
			quantity:   "1",
			sourceUnit: "fl oz",
			spec:       PurchaseUnitSpec{PurchaseUnit: "bottle", SizeValue: size("750"), SizeUnit: "ml"},
			want:       "0.0394313333333333",
			wantMethod: MethodSameDimension,
		},
		{
			name:       "grams into kilograms without declared size",
			quantity:   "250",
			sourceUnit: "g",
			spec:       PurchaseUnitSpec{PurchaseUnit: "kg"},
			want:       "0.25",
			wantMethod: MethodSameDimension,
		},
		{
			name:       "ounces into a 50 lb sack",
			quantity:   "16",
			sourceUnit: "oz",
			spec:       PurchaseUnitSpec{PurchaseUnit: "sack", SizeValue: size("50"), SizeUnit: "lb"},
			want:       "0.02",
			wantMethod: MethodSameDimension,
		},
		{
			name:       "each into a bag of 50",
			quantity:   "5",
			sourceUnit: "each",
			spec:       PurchaseUnitSpec{PurchaseUnit: "bag", SizeValue: size("50"), SizeUnit: "each"},
			want:       "0.1",
			wantMethod: MethodCountToContainer,
		},
		{
			name:       "dozen into a case of 144",
			quantity:   "3",
			sourceUnit: "dozen",
			spec:       PurchaseUnitSpec{PurchaseUnit: "case", SizeValue: size("144"), SizeUnit: "pcs"},
			want:       "0.25",
			wantMethod: MethodCountToContainer,
		},
		{
			name:       "cups of flour into a kilogram bag via class density",
			quantity:   "2",
			sourceUnit: "cup",
			spec:       PurchaseUnitSpec{ProductID: flour, PurchaseUnit: "bag", SizeValue: size("1"), SizeUnit: "kg", DensityClass: "flour"},
			want:       "0.25078328",
			wantMethod: MethodDensity,
		},
		{
			name:       "grams of oil into a litre via product density",
			quantity:   "920",
			sourceUnit: "g",
			spec:       PurchaseUnitSpec{ProductID: oil, PurchaseUnit: "l"},
			want:       "1",
			wantMethod: MethodDensity,
		},
		{
			name:       "mass to volume without density falls back",
			quantity:   "3",
			sourceUnit: "kg",
			spec:       PurchaseUnitSpec{ProductID: uuid.New(), PurchaseUnit: "jug", SizeValue: size("4"), SizeUnit: "l"},
			want:       "3",
			wantMethod: MethodFallback,
		},
		{
			name:       "unknown source unit falls back",
			quantity:   "2",
			sourceUnit: "pinch",
			spec:       PurchaseUnitSpec{PurchaseUnit: "kg"},
			want:       "2",
			wantMethod: MethodFallback,
		},
		{
			name:       "count into mass container falls back",
			quantity:   "4",
			sourceUnit: "each",
			spec:       PurchaseUnitSpec{PurchaseUnit: "kg"},
			want:       "4",
			wantMethod: MethodFallback,
		},
		{
			name:       "zero quantity is allowed",
			quantity:   "0",
			sourceUnit: "g",
			spec:       PurchaseUnitSpec{PurchaseUnit: "kg"},
			want:       "0",
			wantMethod: MethodSameDimension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ToPurchaseUnits(context.Background(), dec(tt.quantity), tt.sourceUnit, tt.spec)
			require.NoError(t, err)
			assertDecimalNear(t, dec(tt.want), result.Quantity)
			assert.Equal(t, tt.wantMethod, result.Method)
			assert.Equal(t, tt.wantMethod == MethodFallback, result.Method.IsLossy())
			assert.True(t, result.SourceQuantity.Equal(dec(tt.quantity)))
		})
	}
}

func TestUnitConversionService_NegativeQuantity(t *testing.T) {
	svc := NewUnitConversionService(nil)

	_, err := svc.ToPurchaseUnits(context.Background(), dec("-1"), "g", PurchaseUnitSpec{PurchaseUnit: "kg"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
}

func TestUnitConversionService_NoDensityLookup(t *testing.T) {
	svc := NewUnitConversionService(nil)

	result, err := svc.ToPurchaseUnits(context.Background(), dec("1"), "cup", PurchaseUnitSpec{PurchaseUnit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, result.Method)
}

func TestUnitConversionService_DensityLookupError(t *testing.T) {
	boom := errors.New("density store unavailable")
	svc := NewUnitConversionService(stubDensities{err: boom})

	_, err := svc.ToPurchaseUnits(context.Background(), dec("1"), "cup", PurchaseUnitSpec{PurchaseUnit: "kg"})
	assert.ErrorIs(t, err, boom)
}

func TestUnitConversionService_NotRounded(t *testing.T) {
	svc := NewUnitConversionService(nil)

	result, err := svc.ToPurchaseUnits(context.Background(), dec("1"), "g", PurchaseUnitSpec{PurchaseUnit: "jar", SizeValue: size("3"), SizeUnit: "g"})
	require.NoError(t, err)
	assert.True(t, result.Quantity.Exponent() < -4, "expected more than four decimal places, got %s", result.Quantity)
}
