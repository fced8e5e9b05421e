package models

// PageRequest holds the pagination and sorting parameters shared by all
// listing endpoints. Page is zero-based. SortDir is compared case-insensitively
// to "desc"; any other value sorts ascending.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// PageResponse is the envelope wrapping every paginated listing result.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPageResponse assembles the envelope for one page of content.
// TotalPages is ceil(totalElements/size); Last is true on the final page and
// for any out-of-range page, which returns empty content.
func NewPageResponse[T any](content []T, page, size int, totalElements int64) PageResponse[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}
	return PageResponse[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}
}
