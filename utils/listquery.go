package utils

import (
	"net/url"
	"strings"
)

const (
	DefaultPageSize  = 20
	MaxPageSize      = 100
	DefaultSortField = "createdAt"

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ListQuery is the normalized paging descriptor shared by every list endpoint.
type ListQuery struct {
	Page          int
	Size          int
	Offset        int
	SortField     string
	SortDirection string
	// Filters holds every query parameter other than page, size and sort.
	Filters url.Values
}

// ParseListQuery never fails: malformed paging input falls back to defaults.
func ParseListQuery(q url.Values) ListQuery {
	page, ok := parseLeadingInt(q.Get("page"))
	if !ok || page < 0 {
		page = 0
	}
	size, ok := parseLeadingInt(q.Get("size"))
	if !ok || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	lq := ListQuery{
		Page:          page,
		Size:          size,
		Offset:        page * size,
		SortField:     DefaultSortField,
		SortDirection: SortDesc,
		Filters:       url.Values{},
	}

	if sort := q.Get("sort"); sort != "" {
		parts := strings.Split(sort, ",")
		if field := strings.TrimSpace(parts[0]); sortablePath(field) {
			lq.SortField = field
		}
		if len(parts) > 1 {
			dir := strings.ToUpper(strings.TrimSpace(parts[1]))
			if dir == SortAsc || dir == SortDesc {
				lq.SortDirection = dir
			}
		}
	}

	for k, v := range q {
		switch k {
		case "page", "size", "sort":
			continue
		}
		lq.Filters[k] = append([]string(nil), v...)
	}
	return lq
}

// SortOrder returns the database sort order: 1 for ASC, -1 for DESC.
func (q ListQuery) SortOrder() int {
	if q.SortDirection == SortAsc {
		return 1
	}
	return -1
}

// Sort renders the sort as "field,DIRECTION".
func (q ListQuery) Sort() string {
	return q.SortField + "," + q.SortDirection
}

// sortablePath reports whether field can be used as a sort path: non-empty
// dot-separated segments, none of them an operator.
func sortablePath(field string) bool {
	if field == "" {
		return false
	}
	for _, seg := range strings.Split(field, ".") {
		if seg == "" || strings.HasPrefix(seg, "$") || strings.ContainsRune(seg, 0) {
			return false
		}
	}
	return true
}

// parseLeadingInt reads an optionally signed run of leading digits, so "2abc"
// and "2.5" both read as 2. Values that do not start with a digit are rejected.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > 1<<30 {
			break
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
