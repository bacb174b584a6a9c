package middleware

import (
	"context"
	"net/http"

	"github.com/kevinaaaquil/bookstore/utils"
)

const listQueryKey contextKey = "listQuery"

// ListQuery normalizes page, size and sort for list endpoints.
func ListQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := utils.ParseListQuery(r.URL.Query())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), listQueryKey, q)))
	})
}

// ListQueryFromContext returns the normalized query, parsing the request
// directly when the middleware did not run.
func ListQueryFromContext(r *http.Request) utils.ListQuery {
	if q, ok := r.Context().Value(listQueryKey).(utils.ListQuery); ok {
		return q
	}
	return utils.ParseListQuery(r.URL.Query())
}
