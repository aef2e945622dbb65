package valueobject

import (
	"strings"

	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Dimension groups units that can be converted into each other by a fixed factor.
type Dimension string

const (
	DimensionUnknown Dimension = ""
	DimensionMass    Dimension = "mass"
	DimensionVolume  Dimension = "volume"
	DimensionCount   Dimension = "count"
)

// Canonical unit codes. Every known unit is expressed as a multiple of one of these.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitEach       = "each"
)

// Unit is an immutable physical unit of measurement.
// toCanonical is how many canonical units (g, ml, each) one of this unit holds.
type Unit struct {
	code        string
	dimension   Dimension
	toCanonical decimal.Decimal
}

func (u Unit) Code() string                 { return u.code }
func (u Unit) Dimension() Dimension         { return u.dimension }
func (u Unit) ToCanonical() decimal.Decimal { return u.toCanonical }

// IsPhysical reports whether the unit measures mass or volume.
func (u Unit) IsPhysical() bool {
	return u.dimension == DimensionMass || u.dimension == DimensionVolume
}

// IsCount reports whether the unit counts discrete items.
func (u Unit) IsCount() bool {
	return u.dimension == DimensionCount
}

// Canonical converts an amount of this unit into its canonical unit.
func (u Unit) Canonical(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(u.toCanonical)
}

func unit(code string, dim Dimension, factor string) Unit {
	return Unit{code: code, dimension: dim, toCanonical: decimal.RequireFromString(factor)}
}

var units = map[string]Unit{
	"mg": unit("mg", DimensionMass, "0.001"),
	"g":  unit("g", DimensionMass, "1"),
	"kg": unit("kg", DimensionMass, "1000"),
	"oz": unit("oz", DimensionMass, "28.3495"),
	"lb": unit("lb", DimensionMass, "453.592"),

	"ml":    unit("ml", DimensionVolume, "1"),
	"l":     unit("l", DimensionVolume, "1000"),
	"tsp":   unit("tsp", DimensionVolume, "4.92892"),
	"tbsp":  unit("tbsp", DimensionVolume, "14.7868"),
	"fl oz": unit("fl oz", DimensionVolume, "29.5735"),
	"cup":   unit("cup", DimensionVolume, "236.588"),
	"pt":    unit("pt", DimensionVolume, "473.176"),
	"qt":    unit("qt", DimensionVolume, "946.353"),
	"gal":   unit("gal", DimensionVolume, "3785.41"),

	"each":  unit("each", DimensionCount, "1"),
	"dozen": unit("dozen", DimensionCount, "12"),
}

var aliases = map[string]string{
	"milligram": "mg", "milligrams": "mg",
	"gr": "g", "gram": "g", "grams": "g", "gm": "g",
	"kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"ounce": "oz", "ounces": "oz",
	"lbs": "lb", "pound": "lb", "pounds": "lb",

	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml", "mls": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l", "ltr": "l",
	"teaspoon": "tsp", "teaspoons": "tsp", "tsps": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp", "tbsps": "tbsp",
	"floz": "fl oz", "fl_oz": "fl oz", "fluid ounce": "fl oz", "fluid ounces": "fl oz", "fl ozs": "fl oz",
	"cups": "cup",
	"pint": "pt", "pints": "pt",
	"quart": "qt", "quarts": "qt",
	"gallon": "gal", "gallons": "gal",

	"ea": "each", "pc": "each", "pcs": "each", "piece": "each", "pieces": "each",
	"unit": "each", "units": "each", "count": "each", "ct": "each",
	"dz": "dozen", "doz": "dozen", "dozens": "dozen",
}

// NormalizeUnitCode lowercases, trims and collapses whitespace and dots so that
// "Fl. Oz", "fl oz" and " FL  OZ " compare equal. Known aliases resolve to their
// canonical code; anything else is returned in normalized form.
func NormalizeUnitCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.Join(strings.Fields(s), " ")
	if code, ok := aliases[s]; ok {
		return code
	}
	return s
}

// LookupUnit resolves a raw unit string against the unit catalog.
func LookupUnit(raw string) (Unit, bool) {
	u, ok := units[NormalizeUnitCode(raw)]
	return u, ok
}

// SameUnit reports whether two raw unit strings name the same unit.
func SameUnit(a, b string) bool {
	na, nb := NormalizeUnitCode(a), NormalizeUnitCode(b)
	return na != "" && na == nb
}

// ValidateQuantity rejects negative quantities.
func ValidateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity cannot be negative")
	}
	return nil
}
