package domain

// Paging defaults shared by every paged query.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is the transport envelope for paged results; it is never persisted.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// NormalizePaging coerces page to at least 1 and pageSize to the default
// when non-positive, then clamps pageSize to MaxPageSize.
func NormalizePaging(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
