package models

// Pagination carries paging metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination derives page counts from a total item count.
func NewPagination(page, perPage, total int) *Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	return &Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
