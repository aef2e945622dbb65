package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionType_Direction(t *testing.T) {
	tests := []struct {
		txType   TransactionType
		valid    bool
		increase bool
		decrease bool
	}{
		{TransactionTypeUsage, true, false, true},
		{TransactionTypeWaste, true, false, true},
		{TransactionTypeTransfer, true, true, false},
		{TransactionTypeReceipt, true, true, false},
		{TransactionTypeAdjustment, true, false, false},
		{TransactionType("INBOUND"), false, false, false},
		{TransactionType(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.txType.IsValid())
			assert.Equal(t, tt.increase, tt.txType.IsIncrease())
			assert.Equal(t, tt.decrease, tt.txType.IsDecrease())
		})
	}
}

func TestNewInventoryTransaction(t *testing.T) {
	restaurantID := uuid.New()
	productID := uuid.New()

	tests := []struct {
		name     string
		txType   TransactionType
		quantity string
		unitCost string
		ref      string
		wantCode string
	}{
		{"usage debit", TransactionTypeUsage, "-5", "4.99", "PR-x:in:y", ""},
		{"transfer credit", TransactionTypeTransfer, "10", "2.495", "PR-x:out:y", ""},
		{"adjustment either sign", TransactionTypeAdjustment, "0.5", "1", "PR-x:adj:y", ""},
		{"usage must be negative", TransactionTypeUsage, "5", "1", "r", shared.CodeInvalidQuantity},
		{"receipt must be positive", TransactionTypeReceipt, "-1", "1", "r", shared.CodeInvalidQuantity},
		{"zero quantity", TransactionTypeAdjustment, "0", "1", "r", shared.CodeInvalidQuantity},
		{"negative cost", TransactionTypeReceipt, "1", "-1", "r", "INVALID_COST"},
		{"missing reference", TransactionTypeReceipt, "1", "1", "", "INVALID_REFERENCE"},
		{"unknown type", TransactionType("LOCK"), "1", "1", "r", "INVALID_TRANSACTION_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewInventoryTransaction(restaurantID, productID, tt.txType,
				decimal.RequireFromString(tt.quantity), decimal.RequireFromString(tt.unitCost), tt.ref)
			if tt.wantCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantCode, de.Code)
				return
			}
			require.NoError(t, err)
			want := decimal.RequireFromString(tt.quantity).Mul(decimal.RequireFromString(tt.unitCost))
			assert.True(t, tx.TotalCost.Equal(want))
			assert.NotEqual(t, uuid.Nil, tx.ID)
		})
	}
}

func TestInventoryTransaction_UsageScenario(t *testing.T) {
	tx, err := NewInventoryTransaction(uuid.New(), uuid.New(), TransactionTypeUsage,
		decimal.NewFromInt(-5), decimal.RequireFromString("4.99"), "PR-1:in:2")
	require.NoError(t, err)

	operator := uuid.New()
	source := uuid.New()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tx.WithStockLevels(decimal.NewFromInt(20), decimal.NewFromInt(15)).
		WithOperatorID(operator).
		WithSourceID(source).
		WithReason("production").
		WithTransactionDate(at)

	assert.True(t, tx.TotalCost.Equal(decimal.RequireFromString("-24.95")))
	assert.True(t, tx.QuantityChange().Equal(decimal.NewFromInt(-5)))
	assert.True(t, tx.IsOutbound())
	assert.False(t, tx.IsInbound())
	assert.Equal(t, operator, *tx.OperatorID)
	assert.Equal(t, source, *tx.SourceID)
	assert.Equal(t, at, tx.TransactionDate)
}

func TestRunEntryReference(t *testing.T) {
	runID := uuid.New()
	productID := uuid.New()

	ref := RunEntryReference(runID, RoleIngredient, productID)
	assert.Equal(t, "PR-"+runID.String()+":in:"+productID.String(), ref)
	assert.Contains(t, ref, RunReferencePrefix(runID))
	assert.NotEqual(t, ref, RunEntryReference(runID, RoleAdjustment, productID))

	gotRun, role, gotProduct, ok := ParseRunEntryReference(ref)
	require.True(t, ok)
	assert.Equal(t, runID, gotRun)
	assert.Equal(t, RoleIngredient, role)
	assert.Equal(t, productID, gotProduct)

	for _, bad := range []string{"", "RCV-123", "PR-" + runID.String(), "PR-" + runID.String() + ":zz:" + productID.String(), "PR-nope:in:" + productID.String()} {
		_, _, _, ok := ParseRunEntryReference(bad)
		assert.False(t, ok, bad)
	}
}

func TestReceiptReference(t *testing.T) {
	assert.Equal(t, "RCV-INV-42", ReceiptReference(" INV-42 "))
	assert.True(t, len(ReceiptReference("")) > len("RCV-"))
}
