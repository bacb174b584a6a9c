package utils

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		page      int
		size      int
		offset    int
		sortField string
		sortDir   string
	}{
		{name: "defaults", raw: "", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "DESC"},
		{name: "explicit paging", raw: "page=2&size=10", page: 2, size: 10, offset: 20, sortField: "createdAt", sortDir: "DESC"},
		{name: "size clamped", raw: "page=1&size=500", page: 1, size: 100, offset: 100, sortField: "createdAt", sortDir: "DESC"},
		{name: "unparseable falls back", raw: "page=abc&size=xyz", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "DESC"},
		{name: "negative page", raw: "page=-3", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "DESC"},
		{name: "zero size uses default", raw: "size=0", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "DESC"},
		{name: "leading digits", raw: "page=3x&size=5.9", page: 3, size: 5, offset: 15, sortField: "createdAt", sortDir: "DESC"},
		{name: "sort ascending", raw: "sort=price,asc", page: 0, size: 20, offset: 0, sortField: "price", sortDir: "ASC"},
		{name: "invalid direction keeps field", raw: "sort=title,sideways", page: 0, size: 20, offset: 0, sortField: "title", sortDir: "DESC"},
		{name: "field only", raw: "sort=title", page: 0, size: 20, offset: 0, sortField: "title", sortDir: "DESC"},
		{name: "direction only", raw: "sort=,ASC", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "ASC"},
		{name: "operator field ignored", raw: "sort=$where,ASC", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "ASC"},
		{name: "nested operator ignored", raw: "sort=price.$gt", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "DESC"},
		{name: "empty segment ignored", raw: "sort=a..b,ASC", page: 0, size: 20, offset: 0, sortField: "createdAt", sortDir: "ASC"},
		{name: "nested path kept", raw: "sort=book.price,ASC", page: 0, size: 20, offset: 0, sortField: "book.price", sortDir: "ASC"},
		{name: "id sort", raw: "sort=_id,ASC", page: 0, size: 20, offset: 0, sortField: "_id", sortDir: "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.raw)
			assert.NoError(t, err)

			lq := ParseListQuery(q)
			assert.Equal(t, tt.page, lq.Page)
			assert.Equal(t, tt.size, lq.Size)
			assert.Equal(t, tt.offset, lq.Offset)
			assert.Equal(t, tt.sortField, lq.SortField)
			assert.Equal(t, tt.sortDir, lq.SortDirection)
		})
	}
}

func TestParseListQuery_OffsetAndSizeBounds(t *testing.T) {
	for page := 0; page < 50; page += 7 {
		for size := -5; size < 300; size += 13 {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			q.Set("size", strconv.Itoa(size))

			lq := ParseListQuery(q)
			assert.Equal(t, lq.Page*lq.Size, lq.Offset)
			assert.LessOrEqual(t, lq.Size, MaxPageSize)
			assert.GreaterOrEqual(t, lq.Size, 1)
		}
	}
}

func TestParseListQuery_Filters(t *testing.T) {
	q, _ := url.ParseQuery("page=1&size=5&sort=title,ASC&author=Tolkien&minPrice=10")
	lq := ParseListQuery(q)

	assert.Equal(t, "Tolkien", lq.Filters.Get("author"))
	assert.Equal(t, "10", lq.Filters.Get("minPrice"))
	assert.NotContains(t, lq.Filters, "page")
	assert.NotContains(t, lq.Filters, "size")
	assert.NotContains(t, lq.Filters, "sort")
	assert.Equal(t, "title,ASC", lq.Sort())
	assert.Equal(t, 1, lq.SortOrder())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 20))
	assert.Equal(t, int64(1), TotalPages(1, 20))
	assert.Equal(t, int64(1), TotalPages(20, 20))
	assert.Equal(t, int64(2), TotalPages(21, 20))
	assert.Equal(t, int64(34), TotalPages(100, 3))
}
