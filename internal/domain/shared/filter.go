package shared

// Filter pages and orders list queries. OrderBy is a caller-facing sort key;
// repositories map it to a column and ignore keys they do not know.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter is the first page of 50, oldest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 50, OrderBy: "created_at", OrderDir: "asc"}
}

// Offset is the number of rows before the current page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
