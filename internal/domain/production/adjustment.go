package production

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdjustmentKind selects how an adjustment is booked
type AdjustmentKind string

const (
	// AdjustmentWaste removes product that was spoiled or discarded
	AdjustmentWaste AdjustmentKind = "waste"
	// AdjustmentCorrection adds (positive) or removes (negative) product
	AdjustmentCorrection AdjustmentKind = "adjustment"
)

// Adjustment is an extra stock movement recorded at completion.
// Quantity is the amount removed from stock for waste, or the signed change for corrections.
type Adjustment struct {
	ProductID uuid.UUID
	Kind      AdjustmentKind
	Quantity  decimal.Decimal
	Unit      string
	Reason    string
}

// Validate checks the adjustment in isolation
func (a Adjustment) Validate() error {
	if a.ProductID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidAdjustment, "Adjustment product is required")
	}
	switch a.Kind {
	case AdjustmentWaste:
		if !a.Quantity.IsPositive() {
			return shared.NewDomainError(shared.CodeInvalidQuantity, "Waste quantity must be positive")
		}
	case AdjustmentCorrection:
		if a.Quantity.IsZero() {
			return shared.NewDomainError(shared.CodeInvalidQuantity, "Adjustment quantity cannot be zero")
		}
	default:
		return shared.NewDomainError(shared.CodeInvalidAdjustment, "Unknown adjustment kind")
	}
	if strings.TrimSpace(a.Unit) == "" {
		return shared.NewDomainError("INVALID_UNIT", "Adjustment unit cannot be empty")
	}
	return nil
}

// Magnitude returns the unsigned amount to convert
func (a Adjustment) Magnitude() decimal.Decimal {
	return a.Quantity.Abs()
}

// Sign returns -1 when the adjustment removes stock, +1 when it adds
func (a Adjustment) Sign() int {
	if a.Kind == AdjustmentWaste || a.Quantity.IsNegative() {
		return -1
	}
	return 1
}

// TransactionType maps the adjustment to its ledger type
func (a Adjustment) TransactionType() inventory.TransactionType {
	if a.Kind == AdjustmentWaste {
		return inventory.TransactionTypeWaste
	}
	return inventory.TransactionTypeAdjustment
}
