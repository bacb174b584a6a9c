package response

import "net/http"

// Code is one entry of the API error taxonomy.
type Code struct {
	Status  int
	Name    string
	Message string
}

var (
	InvalidBody      = Code{http.StatusBadRequest, "INVALID_BODY", "Request body is invalid"}
	InvalidObjectID  = Code{http.StatusBadRequest, "INVALID_OBJECT_ID", "Invalid ObjectId format"}
	Unauthorized     = Code{http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"}
	Forbidden        = Code{http.StatusForbidden, "FORBIDDEN", "Access denied"}
	NotFound         = Code{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	Duplicate        = Code{http.StatusConflict, "DUPLICATE_RESOURCE", "Resource already exists"}
	ValidationFailed = Code{http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed"}
	Internal         = Code{http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"}

	// router and rate limiter answers
	MethodNotAllowed = Code{http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"}
	TooManyRequests  = Code{http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests"}
)
