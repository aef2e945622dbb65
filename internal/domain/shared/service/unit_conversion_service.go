package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConversionMethod records which rule produced a conversion.
type ConversionMethod string

const (
	MethodDirect           ConversionMethod = "direct"
	MethodSameDimension    ConversionMethod = "same_dimension"
	MethodDensity          ConversionMethod = "density"
	MethodCountToContainer ConversionMethod = "count_to_container"
	// MethodFallback is the lossy 1:1 rule used when no other rule applies.
	MethodFallback ConversionMethod = "fallback"
)

// IsLossy reports whether the method guessed instead of converting.
func (m ConversionMethod) IsLossy() bool {
	return m == MethodFallback
}

// PurchaseUnitSpec describes how a product is bought: "1 bag of 50 each",
// "1 bottle of 750 ml", or just "kg".
type PurchaseUnitSpec struct {
	ProductID    uuid.UUID
	PurchaseUnit string
	SizeValue    *decimal.Decimal
	SizeUnit     string
	DensityClass string
}

// DensityLookup resolves grams per millilitre for a product.
// found is false when no density is known.
type DensityLookup interface {
	GramsPerMilliliter(ctx context.Context, productID uuid.UUID, densityClass string) (density decimal.Decimal, found bool, err error)
}

// UnitConversionResult represents the result of a unit conversion
type UnitConversionResult struct {
	SourceQuantity decimal.Decimal  `json:"source_quantity"`
	SourceUnit     string           `json:"source_unit"`
	Quantity       decimal.Decimal  `json:"quantity"`
	PurchaseUnit   string           `json:"purchase_unit"`
	Method         ConversionMethod `json:"method"`
}

// UnitConversionService converts recorded quantities into a product's purchase unit.
// Results are never rounded.
type UnitConversionService struct {
	densities DensityLookup
}

// NewUnitConversionService creates a new unit conversion service.
// densities may be nil, in which case density conversion is never taken.
func NewUnitConversionService(densities DensityLookup) *UnitConversionService {
	return &UnitConversionService{densities: densities}
}

// ToPurchaseUnits converts quantity of sourceUnit into the purchase unit described by spec.
// Rules are tried in order: direct match, same dimension, density, count to container,
// and finally a 1:1 fallback. Unknown units never fail.
func (s *UnitConversionService) ToPurchaseUnits(
	ctx context.Context,
	quantity decimal.Decimal,
	sourceUnit string,
	spec PurchaseUnitSpec,
) (*UnitConversionResult, error) {
	if err := valueobject.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	result := &UnitConversionResult{
		SourceQuantity: quantity,
		SourceUnit:     sourceUnit,
		PurchaseUnit:   spec.PurchaseUnit,
	}

	if valueobject.SameUnit(sourceUnit, spec.PurchaseUnit) {
		result.Quantity = quantity
		result.Method = MethodDirect
		return result, nil
	}

	src, srcKnown := valueobject.LookupUnit(sourceUnit)
	capacity, capUnit, capKnown := purchaseCapacity(spec)

	if srcKnown && capKnown {
		switch {
		case src.IsPhysical() && src.Dimension() == capUnit.Dimension():
			result.Quantity = src.Canonical(quantity).Div(capUnit.Canonical(capacity))
			result.Method = MethodSameDimension
			return result, nil

		case src.IsPhysical() && capUnit.IsPhysical():
			converted, ok, err := s.viaDensity(ctx, quantity, src, capacity, capUnit, spec)
			if err != nil {
				return nil, err
			}
			if ok {
				result.Quantity = converted
				result.Method = MethodDensity
				return result, nil
			}

		case src.IsCount() && capUnit.IsCount():
			result.Quantity = src.Canonical(quantity).Div(capUnit.Canonical(capacity))
			result.Method = MethodCountToContainer
			return result, nil
		}
	}

	result.Quantity = quantity
	result.Method = MethodFallback
	return result, nil
}

// purchaseCapacity returns how much one purchase unit holds. A declared size wins;
// otherwise a purchase unit that is itself a known unit holds exactly one of itself.
func purchaseCapacity(spec PurchaseUnitSpec) (decimal.Decimal, valueobject.Unit, bool) {
	if spec.SizeValue != nil && spec.SizeValue.IsPositive() {
		if u, ok := valueobject.LookupUnit(spec.SizeUnit); ok {
			return *spec.SizeValue, u, true
		}
		return decimal.Zero, valueobject.Unit{}, false
	}
	if u, ok := valueobject.LookupUnit(spec.PurchaseUnit); ok {
		return decimal.NewFromInt(1), u, true
	}
	return decimal.Zero, valueobject.Unit{}, false
}

func (s *UnitConversionService) viaDensity(
	ctx context.Context,
	quantity decimal.Decimal,
	src valueobject.Unit,
	capacity decimal.Decimal,
	capUnit valueobject.Unit,
	spec PurchaseUnitSpec,
) (decimal.Decimal, bool, error) {
	if s.densities == nil {
		return decimal.Zero, false, nil
	}
	density, found, err := s.densities.GramsPerMilliliter(ctx, spec.ProductID, spec.DensityClass)
	if err != nil {
		return decimal.Zero, false, err
	}
	if !found || !density.IsPositive() {
		return decimal.Zero, false, nil
	}

	canonical := src.Canonical(quantity)
	if src.Dimension() == valueobject.DimensionMass {
		canonical = canonical.Div(density) // grams to millilitres
	} else {
		canonical = canonical.Mul(density) // millilitres to grams
	}
	return canonical.Div(capUnit.Canonical(capacity)), true, nil
}
