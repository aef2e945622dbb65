// Package export renders ledger data into downloadable spreadsheets.
package export

import (
	"fmt"
	"io"

	inventoryapp "github.com/kitchenops/backend/internal/application/inventory"
	"github.com/kitchenops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of the workbook written by WriteLedgerXLSX
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const ledgerSheet = "Ledger"

var ledgerHeadings = []string{
	"Date", "Type", "Product ID", "Quantity", "Unit Cost", "Total Cost",
	"Stock Before", "Stock After", "Reference", "Role", "Reason",
}

// WriteLedgerXLSX writes entries as a single-sheet workbook with a heading row
// and a trailing total-cost row.
func WriteLedgerXLSX(w io.Writer, entries []inventoryapp.LedgerEntryResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, toAny(ledgerHeadings)); err != nil {
		return err
	}

	total := decimal.Zero
	for i, e := range entries {
		row := []any{
			e.TransactionDate.UTC().Format("2006-01-02 15:04:05"),
			e.TransactionType,
			e.ProductID.String(),
			e.Quantity.InexactFloat64(),
			e.UnitCost.InexactFloat64(),
			e.TotalCost.InexactFloat64(),
			e.StockBefore.InexactFloat64(),
			e.StockAfter.InexactFloat64(),
			e.Reference,
			roleLabel(e.Reference),
			e.Reason,
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
		total = total.Add(e.TotalCost)
	}

	totalRow := len(entries) + 2
	if err := setRow(f, totalRow, []any{"Total", nil, nil, nil, nil, total.InexactFloat64()}); err != nil {
		return err
	}

	if err := f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze heading: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var roleLabels = map[inventory.EntryRole]string{
	inventory.RoleIngredient: "ingredient",
	inventory.RoleOutput:     "output",
	inventory.RoleAdjustment: "adjustment",
}

// roleLabel names the run posting a reference belongs to; other references get a blank cell.
func roleLabel(reference string) string {
	_, role, _, ok := inventory.ParseRunEntryReference(reference)
	if !ok {
		return ""
	}
	return roleLabels[role]
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
