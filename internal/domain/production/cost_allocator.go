package production

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLine is one consumed quantity, already in the product's purchase unit.
// Quantity is the amount consumed as a positive figure; negative values credit the batch.
type CostLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// Cost returns quantity times unit cost
func (l CostLine) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// CostAllocation is the costing of a finished batch
type CostAllocation struct {
	TotalBatchCost decimal.Decimal
	OutputUnitCost decimal.Decimal
	// ZeroYield is set when nothing was produced; OutputUnitCost is then zero.
	ZeroYield bool
}

// OutputCost returns the value credited to the output product
func (a CostAllocation) OutputCost(outputQuantity decimal.Decimal) decimal.Decimal {
	return outputQuantity.Mul(a.OutputUnitCost)
}

// CostAllocator spreads the cost of consumed ingredients over the output.
type CostAllocator struct{}

// NewCostAllocator creates a cost allocator
func NewCostAllocator() *CostAllocator {
	return &CostAllocator{}
}

// Allocate sums the batch cost and divides it across outputQuantity. No rounding is applied.
func (a *CostAllocator) Allocate(lines []CostLine, outputQuantity decimal.Decimal) CostAllocation {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Cost())
	}

	if !outputQuantity.IsPositive() {
		return CostAllocation{TotalBatchCost: total, OutputUnitCost: decimal.Zero, ZeroYield: true}
	}
	return CostAllocation{TotalBatchCost: total, OutputUnitCost: total.Div(outputQuantity)}
}

// Conserved reports whether debited and credited value agree within a relative tolerance.
func Conserved(debited, credited, tolerance decimal.Decimal) bool {
	diff := debited.Abs().Sub(credited.Abs()).Abs()
	scale := decimal.Max(debited.Abs(), credited.Abs())
	if scale.IsZero() {
		return diff.IsZero()
	}
	return diff.Div(scale).LessThanOrEqual(tolerance)
}
