// Package handlers holds the HTTP handlers of every resource and the router
// that assembles them.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads the body into dst and answers INVALID_BODY on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		msg := ""
		if errors.Is(err, io.EOF) {
			msg = "Request body is empty"
		}
		response.Error(w, r, response.InvalidBody, msg, nil)
		return false
	}
	return true
}

// bind decodes and validates dst, answering 400 or 422 on failure.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		writeValidation(w, r, verr)
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	response.Error(w, r, response.ValidationFailed, "", verr.Errors())
}

// pathID parses the {name} URL parameter as an ObjectID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		response.Error(w, r, response.InvalidObjectID, "", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// storeError maps storage and service errors onto the error taxonomy.
// Unexpected errors are logged and reported without detail.
func storeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, notFound, duplicate string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, r, response.NotFound, notFound, nil)
	case errors.Is(err, store.ErrDuplicate):
		response.Error(w, r, response.Duplicate, duplicate, nil)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		logger.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		response.Error(w, r, response.Internal, "", nil)
	}
}

// currentUser is set by the auth gate on every protected route.
func currentUser(r *http.Request) *models.User {
	u, _ := middleware.UserFromContext(r.Context())
	return u
}

// canModify reports whether user may change something owned by owner.
func canModify(user *models.User, owner primitive.ObjectID) bool {
	return user.IsAdmin || user.ID == owner
}

// writeCached answers with a payload produced by cache.Remember.
func writeCached(w http.ResponseWriter, message string, raw []byte, source string) {
	response.Sourced(w, message, source, json.RawMessage(raw))
}

// serveCached runs load through the cache under key and writes the result.
func serveCached(w http.ResponseWriter, r *http.Request, c *cache.Cache, logger *zap.Logger, key, message, notFound string, load func(context.Context) (any, error)) {
	raw, source, err := c.Remember(r.Context(), key, load)
	if err != nil {
		storeError(w, r, logger, err, notFound, "")
		return
	}
	writeCached(w, message, raw, source)
}

// distinctIDs collects the distinct ids get returns over items.
func distinctIDs[T any](items []T, get func(T) primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(items))
	out := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		id := get(it)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
