package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns maps the sort keys a caller may ask for to table columns.
// Anything not listed falls back to the repository's default column, so
// caller input never reaches the ORDER BY clause verbatim.
type sortColumns map[string]string

var ledgerSortColumns = sortColumns{
	"created_at":       "created_at",
	"transaction_date": "transaction_date",
	"date":             "transaction_date",
	"transaction_type": "transaction_type",
	"type":             "transaction_type",
	"quantity":         "quantity",
	"total_cost":       "total_cost",
	"reference":        "reference",
}

// orderBy resolves key and dir into an ORDER BY with id as tie-breaker.
// Direction defaults to descending.
func (s sortColumns) orderBy(key, dir, fallback string) clause.OrderBy {
	column, ok := s[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		column = fallback
	}
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}
