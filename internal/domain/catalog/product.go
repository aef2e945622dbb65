package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/shopspring/decimal"
)

// Product is a stocked item as it is bought: "bag" of 50 each, "bottle" of 750 ml, "lb".
// CurrentStock is expressed in PurchaseUnit and only moves through inventory ledger postings.
type Product struct {
	shared.RestaurantAggregateRoot
	Name         string           `gorm:"type:varchar(200);not null"`
	SKU          string           `gorm:"type:varchar(50);index"`
	PurchaseUnit string           `gorm:"type:varchar(30);not null"`
	SizeValue    *decimal.Decimal `gorm:"type:decimal(24,10)"`
	SizeUnit     string           `gorm:"type:varchar(30)"`
	CostPerUnit  decimal.Decimal  `gorm:"type:decimal(24,10);not null;default:0"`
	CurrentStock decimal.Decimal  `gorm:"type:decimal(24,10);not null;default:0"`
	DensityClass string           `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product with zero stock.
func NewProduct(restaurantID uuid.UUID, name, purchaseUnit string, costPerUnit decimal.Decimal) (*Product, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	purchaseUnit = strings.TrimSpace(purchaseUnit)
	if purchaseUnit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Purchase unit cannot be empty")
	}
	if costPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}

	return &Product{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    name,
		PurchaseUnit:            purchaseUnit,
		CostPerUnit:             costPerUnit,
		CurrentStock:            decimal.Zero,
	}, nil
}

// WithSize declares how much one purchase unit holds.
func (p *Product) WithSize(value decimal.Decimal, unit string) error {
	if !value.IsPositive() {
		return shared.NewDomainError("INVALID_SIZE", "Size value must be positive")
	}
	if strings.TrimSpace(unit) == "" {
		return shared.NewDomainError("INVALID_UNIT", "Size unit cannot be empty")
	}
	p.SizeValue = &value
	p.SizeUnit = strings.TrimSpace(unit)
	p.Touch()
	return nil
}

// WithDensityClass tags the product for class-level density lookup.
func (p *Product) WithDensityClass(class string) *Product {
	p.DensityClass = strings.ToLower(strings.TrimSpace(class))
	return p
}

// WithSKU sets the stock keeping code.
func (p *Product) WithSKU(sku string) *Product {
	p.SKU = strings.TrimSpace(sku)
	return p
}

// UpdateCost changes the cost per purchase unit.
func (p *Product) UpdateCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost per unit cannot be negative")
	}
	p.CostPerUnit = cost
	p.Touch()
	p.IncrementVersion()
	return nil
}

// PurchaseUnitSpec describes the product's purchase unit for conversion.
func (p *Product) PurchaseUnitSpec() service.PurchaseUnitSpec {
	return service.PurchaseUnitSpec{
		ProductID:    p.ID,
		PurchaseUnit: p.PurchaseUnit,
		SizeValue:    p.SizeValue,
		SizeUnit:     p.SizeUnit,
		DensityClass: p.DensityClass,
	}
}
