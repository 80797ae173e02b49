package domain

import (
	"math"
	"time"
)

// BaseModel is the common base struct for all locally stored models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Filter   map[string]string
}

// PageResult is one server-paginated batch of records plus pagination metadata.
// Page reports the page actually served, which may differ from the requested
// page when the request was out of range.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResult builds a PageResult with TotalPages computed as
// ceil(total / page_size). A nil items slice becomes an empty slice so JSON
// encodes [] rather than null.
func NewPageResult[T any](items []T, total int64, req PageRequest) *PageResult[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	if items == nil {
		items = []T{}
	}

	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}

// ClampPage bounds the requested page to [1, totalPages] so an out-of-range
// request serves the nearest valid page instead of an empty one. A zero
// totalPages (no rows) clamps to page 1.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages > 0 && page > totalPages {
		return totalPages
	}
	return page
}
