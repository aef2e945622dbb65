package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EntryRole distinguishes the postings a production run makes.
type EntryRole string

const (
	RoleIngredient EntryRole = "in"
	RoleOutput     EntryRole = "out"
	RoleAdjustment EntryRole = "adj"
)

const (
	productionRunPrefix = "PR-"
	receiptPrefix       = "RCV-"
)

// RunReferencePrefix returns the prefix shared by every ledger entry of a production run.
func RunReferencePrefix(runID uuid.UUID) string {
	return productionRunPrefix + runID.String()
}

// RunEntryReference returns the reference for one posting of a production run.
// The result is unique per run, role and product.
func RunEntryReference(runID uuid.UUID, role EntryRole, productID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", RunReferencePrefix(runID), role, productID)
}

// ReceiptReference returns the reference for a purchase receipt.
// A blank document number gets a generated one.
func ReceiptReference(document string) string {
	document = strings.TrimSpace(document)
	if document == "" {
		document = uuid.NewString()
	}
	return receiptPrefix + document
}

// ParseRunEntryReference splits a run entry reference into its parts.
func ParseRunEntryReference(ref string) (runID uuid.UUID, role EntryRole, productID uuid.UUID, ok bool) {
	if !strings.HasPrefix(ref, productionRunPrefix) {
		return uuid.Nil, "", uuid.Nil, false
	}
	parts := strings.Split(strings.TrimPrefix(ref, productionRunPrefix), ":")
	if len(parts) != 3 {
		return uuid.Nil, "", uuid.Nil, false
	}
	var err error
	if runID, err = uuid.Parse(parts[0]); err != nil {
		return uuid.Nil, "", uuid.Nil, false
	}
	if productID, err = uuid.Parse(parts[2]); err != nil {
		return uuid.Nil, "", uuid.Nil, false
	}
	role = EntryRole(parts[1])
	switch role {
	case RoleIngredient, RoleOutput, RoleAdjustment:
		return runID, role, productID, true
	}
	return uuid.Nil, "", uuid.Nil, false
}
