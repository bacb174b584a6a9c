package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/store"
)

type contextKey string

const (
	userKey   contextKey = "user"
	claimsKey contextKey = "claims"
	tokenKey  contextKey = "token"
)

// UserLookup resolves the subject of a token.
type UserLookup interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RevocationList reports access tokens revoked by logout.
type RevocationList interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Auth is the access control gate. Authenticate establishes who is calling,
// RequireActive and RequireAdmin narrow it down.
type Auth struct {
	tokens  *service.TokenManager
	users   UserLookup
	revoked RevocationList
	logger  *zap.Logger
}

func NewAuth(tokens *service.TokenManager, users UserLookup, revoked RevocationList, logger *zap.Logger) *Auth {
	return &Auth{tokens: tokens, users: users, revoked: revoked, logger: logger}
}

// Authenticate rejects the request with 401 unless it carries a valid,
// unrevoked bearer token for an existing user.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r)
		if !ok {
			response.Error(w, r, response.Unauthorized, "missing or malformed authorization header", nil)
			return
		}
		claims, err := a.tokens.ParseAccess(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				msg = "token expired"
			}
			response.Error(w, r, response.Unauthorized, msg, nil)
			return
		}
		if a.revoked != nil {
			revoked, err := a.revoked.IsRevoked(r.Context(), raw)
			if err != nil {
				a.logger.Warn("token blacklist unavailable", zap.Error(err))
			}
			if revoked {
				response.Error(w, r, response.Unauthorized, "token revoked", nil)
				return
			}
		}
		id, err := service.UserIDFrom(claims.UserID)
		if err != nil {
			response.Error(w, r, response.Unauthorized, "invalid token", nil)
			return
		}
		user, err := a.users.UserByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, r, response.Unauthorized, "user no longer exists", nil)
				return
			}
			a.logger.Error("failed to load token subject", zap.String("user_id", id.Hex()), zap.Error(err))
			response.Error(w, r, response.Internal, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, claimsKey, claims)
		ctx = context.WithValue(ctx, tokenKey, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActive answers 403 for deactivated accounts.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, response.Unauthorized, "", nil)
			return
		}
		if !user.IsActive {
			response.Error(w, r, response.Forbidden, "account is deactivated", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 unless the caller is an admin. The flag is read
// from the stored user, not the token, so revoked rights take effect at once.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, response.Unauthorized, "", nil)
			return
		}
		if !user.IsAdmin {
			response.Error(w, r, response.Forbidden, "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func ClaimsFromContext(ctx context.Context) (*service.AccessClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*service.AccessClaims)
	return c, ok && c != nil
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}

// WithUser returns ctx carrying user, as Authenticate would.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
