package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/kevinaaaquil/bookstore/response"
)

// RateLimit allows perMinute requests per client IP. Zero disables it.
func RateLimit(perMinute int) func(next http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, r, response.TooManyRequests, "", nil)
		}),
	)
}
