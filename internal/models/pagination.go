package models

import "fmt"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageRequest selects a page. Zero or negative fields are treated as omitted.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize returns the request with omitted fields replaced by their defaults
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Paginated is one page of items plus page/size/count metadata
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// TotalPagesFor returns ceil(totalCount / pageSize), or 0 when pageSize is not positive
func TotalPagesFor(totalCount, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// CheckInvariants returns the first violated pagination invariant, or nil
func (p *Paginated[T]) CheckInvariants() error {
	if p.Page < 1 {
		return fmt.Errorf("page %d is below 1", p.Page)
	}
	if p.PageSize > 0 {
		if len(p.Data) > p.PageSize {
			return fmt.Errorf("page holds %d items, more than page size %d", len(p.Data), p.PageSize)
		}
		if want := TotalPagesFor(p.TotalCount, p.PageSize); p.TotalPages != want {
			return fmt.Errorf("total pages %d, expected %d for %d items", p.TotalPages, want, p.TotalCount)
		}
	}
	return nil
}

// HasNext returns true if a later page exists
func (p *Paginated[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// APIResponse is the thin { "data": T } envelope some endpoints use
type APIResponse[T any] struct {
	Data T `json:"data"`
}
