package response

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/bookstore/utils"
)

func TestError_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books/123?x=1", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, NotFound, "Book not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/books/123?x=1", body["path"])
	assert.Equal(t, float64(404), body["status"])
	assert.Equal(t, "RESOURCE_NOT_FOUND", body["code"])
	assert.Equal(t, "Book not found", body["message"])
	assert.Contains(t, body, "details")
	assert.Nil(t, body["details"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestError_DefaultMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, Unauthorized, "", nil)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Authentication required", body.Message)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

func TestSuccess_OmitsEmptyData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusOK, "Coupon successfully deleted", nil)

	assert.JSONEq(t, `{"status":"success","message":"Coupon successfully deleted"}`, rec.Body.String())
}

func TestNewPage(t *testing.T) {
	q := utils.ParseListQuery(url.Values{"page": {"1"}, "size": {"3"}, "sort": {"price,ASC"}})

	p := NewPage([]int{4, 5, 6}, q, 7)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 3, p.Size)
	assert.Equal(t, int64(7), p.TotalElements)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.Equal(t, "price,ASC", p.Sort)
}

func TestNewPage_Empty(t *testing.T) {
	q := utils.ParseListQuery(url.Values{})

	p := NewPage[string](nil, q, 0)
	assert.Equal(t, int64(0), p.TotalPages)
	assert.NotNil(t, p.Content)
	assert.Empty(t, p.Content)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"page":0,"size":20,"totalElements":0,"totalPages":0,"sort":"createdAt,DESC"}`, string(raw))
}
