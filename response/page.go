package response

import "github.com/kevinaaaquil/bookstore/utils"

// Page is the pagination descriptor returned by list endpoints.
type Page[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int64  `json:"totalPages"`
	Sort          string `json:"sort"`
}

// NewPage assembles an already fetched page. content may be nil.
func NewPage[T any](content []T, q utils.ListQuery, totalElements int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: totalElements,
		TotalPages:    utils.TotalPages(totalElements, q.Size),
		Sort:          q.Sort(),
	}
}
