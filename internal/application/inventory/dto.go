package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitCost        decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	TotalCost       decimal.Decimal `json:"total_cost" swaggertype:"string"`
	StockBefore     decimal.Decimal `json:"stock_before" swaggertype:"string"`
	StockAfter      decimal.Decimal `json:"stock_after" swaggertype:"string"`
	Reference       string          `json:"reference"`
	SourceID        *uuid.UUID      `json:"source_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	OperatorID      *uuid.UUID      `json:"operator_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToLedgerEntryResponse converts a ledger entry to its response form
func ToLedgerEntryResponse(tx *inventory.InventoryTransaction) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              tx.ID,
		ProductID:       tx.ProductID,
		TransactionType: tx.TransactionType.String(),
		Quantity:        tx.Quantity,
		UnitCost:        tx.UnitCost,
		TotalCost:       tx.TotalCost,
		StockBefore:     tx.StockBefore,
		StockAfter:      tx.StockAfter,
		Reference:       tx.Reference,
		SourceID:        tx.SourceID,
		Reason:          tx.Reason,
		OperatorID:      tx.OperatorID,
		TransactionDate: tx.TransactionDate,
	}
}

// ToLedgerEntryResponses converts a slice of ledger entries
func ToLedgerEntryResponses(txs []inventory.InventoryTransaction) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(txs))
	for i := range txs {
		out[i] = ToLedgerEntryResponse(&txs[i])
	}
	return out
}

// ImpactRequest asks how a recorded quantity would move a product's stock
type ImpactRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" swaggertype:"string" binding:"required"`
	Unit      string          `json:"unit" binding:"required,unit_code"`
}

// ImpactResponse is the conversion preview for a product
type ImpactResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	SourceQuantity   decimal.Decimal `json:"source_quantity" swaggertype:"string"`
	SourceUnit       string          `json:"source_unit"`
	PurchaseQuantity decimal.Decimal `json:"purchase_quantity" swaggertype:"string"`
	PurchaseUnit     string          `json:"purchase_unit"`
	Method           string          `json:"method"`
	Lossy            bool            `json:"lossy"`
	UnitCost         decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost" swaggertype:"string"`
	CurrentStock     decimal.Decimal `json:"current_stock" swaggertype:"string"`
	StockAfterUsage  decimal.Decimal `json:"stock_after_usage" swaggertype:"string"`
}

// RecordReceiptRequest records purchased stock arriving
type RecordReceiptRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" swaggertype:"string" binding:"required"`
	Unit      string           `json:"unit" binding:"required,unit_code"`
	UnitCost  *decimal.Decimal `json:"unit_cost" swaggertype:"string"` // Per purchase unit; updates the product cost when set
	Document  string           `json:"document" binding:"max=100"`
}

// ReconciliationResponse compares the stock projection with the ledger
type ReconciliationResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock" swaggertype:"string"`
	LedgerStock  decimal.Decimal `json:"ledger_stock" swaggertype:"string"`
	Difference   decimal.Decimal `json:"difference" swaggertype:"string"`
	InSync       bool            `json:"in_sync"`
	Negative     bool            `json:"negative"`
}
