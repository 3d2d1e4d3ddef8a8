package models

// ===============================
// SHARED PAGINATION TYPES
// ===============================

// PaginationParams represents pagination parameters parsed from a request
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty" validate:"omitempty,oneof=created_at updated_at kickoff_at"`
	Order  string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// DefaultPaginationParams returns sane defaults for list endpoints
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: 20, Offset: 0, Sort: "created_at", Order: "desc"}
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// NewPaginationMeta builds metadata from params and a total row count
func NewPaginationMeta(params PaginationParams, total int64) PaginationMeta {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	currentPage := params.Offset/params.Limit + 1
	return PaginationMeta{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: params.Limit,
		HasNext:      currentPage < totalPages,
		HasPrev:      currentPage > 1,
	}
}
