package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeUsage is an ingredient consumed by production
	TransactionTypeUsage TransactionType = "usage"
	// TransactionTypeTransfer is prepared output credited into stock
	TransactionTypeTransfer TransactionType = "transfer"
	// TransactionTypeWaste is product discarded during production
	TransactionTypeWaste TransactionType = "waste"
	// TransactionTypeAdjustment is a manual correction in either direction
	TransactionTypeAdjustment TransactionType = "adjustment"
	// TransactionTypeReceipt is purchased stock arriving
	TransactionTypeReceipt TransactionType = "receipt"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeUsage,
		TransactionTypeTransfer,
		TransactionTypeWaste,
		TransactionTypeAdjustment,
		TransactionTypeReceipt:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type always adds stock
func (t TransactionType) IsIncrease() bool {
	return t == TransactionTypeTransfer || t == TransactionTypeReceipt
}

// IsDecrease returns true if this transaction type always removes stock
func (t TransactionType) IsDecrease() bool {
	return t == TransactionTypeUsage || t == TransactionTypeWaste
}

// InventoryTransaction represents an immutable record of a stock movement.
// Quantity and TotalCost are signed: negative for stock leaving, positive for stock arriving.
// Corrections are made with new transactions, never by editing old ones.
type InventoryTransaction struct {
	shared.BaseEntity
	RestaurantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_restaurant_time,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_product"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null;index:idx_inv_tx_type"`
	Quantity        decimal.Decimal `gorm:"type:decimal(24,10);not null"` // In the product's purchase unit
	UnitCost        decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(24,10);not null"` // Quantity * UnitCost
	StockBefore     decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	StockAfter      decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	Reference       string          `gorm:"type:varchar(150);not null;index:idx_inv_tx_reference"`
	SourceID        *uuid.UUID      `gorm:"type:uuid;index"` // Production run or receipt document
	Reason          string          `gorm:"type:varchar(255)"`
	OperatorID      *uuid.UUID      `gorm:"type:uuid"`
	TransactionDate time.Time       `gorm:"not null;index:idx_inv_tx_restaurant_time,priority:2"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction creates a ledger entry. quantity is signed and must agree
// with the direction of txType.
func NewInventoryTransaction(
	restaurantID uuid.UUID,
	productID uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	reference string,
) (*InventoryTransaction, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity cannot be zero")
	}
	if txType.IsDecrease() && quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be negative for "+txType.String())
	}
	if txType.IsIncrease() && quantity.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive for "+txType.String())
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot be empty")
	}

	return &InventoryTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		RestaurantID:    restaurantID,
		ProductID:       productID,
		TransactionType: txType,
		Quantity:        quantity,
		UnitCost:        unitCost,
		TotalCost:       quantity.Mul(unitCost),
		Reference:       reference,
		TransactionDate: time.Now(),
	}, nil
}

// WithStockLevels records the product stock around this movement
func (t *InventoryTransaction) WithStockLevels(before, after decimal.Decimal) *InventoryTransaction {
	t.StockBefore = before
	t.StockAfter = after
	return t
}

// WithSourceID links the entry to the document that caused it
func (t *InventoryTransaction) WithSourceID(sourceID uuid.UUID) *InventoryTransaction {
	t.SourceID = &sourceID
	return t
}

// WithReason sets the reason for the transaction
func (t *InventoryTransaction) WithReason(reason string) *InventoryTransaction {
	t.Reason = reason
	return t
}

// WithOperatorID sets the operator ID for the transaction
func (t *InventoryTransaction) WithOperatorID(operatorID uuid.UUID) *InventoryTransaction {
	t.OperatorID = &operatorID
	return t
}

// WithTransactionDate sets the transaction date
func (t *InventoryTransaction) WithTransactionDate(date time.Time) *InventoryTransaction {
	t.TransactionDate = date
	return t
}

// IsInbound returns true if the entry added stock
func (t *InventoryTransaction) IsInbound() bool {
	return t.Quantity.IsPositive()
}

// IsOutbound returns true if the entry removed stock
func (t *InventoryTransaction) IsOutbound() bool {
	return t.Quantity.IsNegative()
}

// QuantityChange returns the net stock change recorded around the entry
func (t *InventoryTransaction) QuantityChange() decimal.Decimal {
	return t.StockAfter.Sub(t.StockBefore)
}
