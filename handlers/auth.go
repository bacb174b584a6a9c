package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/store"
)

const (
	refreshCookie = "refresh_token"
	stateCookie   = "oauth_state"
	stateTTL      = 10 * time.Minute
)

type AuthHandler struct {
	Users      UserStore
	Cache      *cache.Cache
	Carts      *service.CartService
	Tokens     *service.TokenManager
	Blacklist  Revoker
	Firebase   ExternalVerifier
	Google     OAuthProvider
	RefreshTTL time.Duration
	Logger     *zap.Logger
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the success envelope with the issued tokens alongside.
type TokenResponse struct {
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	Data         *models.User `json:"data,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !bind(w, r, &req) {
		return
	}
	user, err := h.Users.UserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		storeError(w, r, h.Logger, err, "User not found", "")
		return
	}
	if !user.IsActive {
		response.Error(w, r, response.Forbidden, "Account is deactivated", nil)
		return
	}
	if !user.CanUsePassword() {
		response.Error(w, r, response.Unauthorized, "Account signs in with "+string(user.Provider), nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Error(w, r, response.Unauthorized, "Incorrect password", nil)
		return
	}
	h.issue(w, r, user, "Login successful")
}

// Refresh trades a refresh token, from the body or the cookie, for a new
// access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(refreshCookie); err == nil {
			req.RefreshToken = c.Value
		}
	}
	if req.RefreshToken == "" {
		response.Error(w, r, response.InvalidBody, "Refresh token required", nil)
		return
	}
	claims, err := h.Tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		response.Error(w, r, response.Unauthorized, "Invalid or expired refresh token", nil)
		return
	}
	id, err := service.UserIDFrom(claims.UserID)
	if err != nil {
		response.Error(w, r, response.Unauthorized, "Invalid or expired refresh token", nil)
		return
	}
	user, err := h.Users.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, r, response.Unauthorized, "User not found", nil)
			return
		}
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	if !user.IsActive {
		response.Error(w, r, response.Forbidden, "Account is deactivated", nil)
		return
	}
	access, err := h.Tokens.AccessToken(user.ID, user.IsAdmin)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	response.JSON(w, http.StatusOK, TokenResponse{
		Status:      response.StatusSuccess,
		Message:     "Token refreshed",
		AccessToken: access,
	})
}

// Logout revokes the presented access token until it would have expired and
// clears the refresh cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && h.Blacklist != nil {
		if err := h.Blacklist.Revoke(r.Context(), token, h.Tokens.RemainingTTL(claims)); err != nil {
			h.Logger.Warn("failed to blacklist access token", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	response.Success(w, http.StatusOK, "Logged out", nil)
}

// FirebaseLogin signs in with a Firebase ID token sent as the bearer token.
func (h *AuthHandler) FirebaseLogin(w http.ResponseWriter, r *http.Request) {
	idToken, ok := middleware.BearerToken(r)
	if !ok {
		response.Error(w, r, response.Unauthorized, "Firebase token required", nil)
		return
	}
	profile, err := h.Firebase.Verify(r.Context(), idToken)
	if err != nil {
		h.Logger.Info("firebase token rejected", zap.Error(err))
		response.Error(w, r, response.Unauthorized, "Invalid or expired Firebase token", nil)
		return
	}
	h.external(w, r, profile)
}

// GoogleLogin redirects to Google's consent page.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Google.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		response.Error(w, r, response.Unauthorized, "OAuth state mismatch", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		response.Error(w, r, response.Unauthorized, "Authorization code missing", nil)
		return
	}
	profile, err := h.Google.Profile(r.Context(), code)
	if err != nil {
		h.Logger.Warn("google sign-in failed", zap.Error(err))
		response.Error(w, r, response.Unauthorized, "Google authentication failed", nil)
		return
	}
	h.external(w, r, profile)
}

func (h *AuthHandler) external(w http.ResponseWriter, r *http.Request, profile *service.ExternalProfile) {
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	if profile.Email == "" {
		response.Error(w, r, response.InvalidBody, "Identity provider returned no email", nil)
		return
	}
	if !profile.EmailVerified {
		response.Error(w, r, response.Unauthorized, "Email address is not verified", nil)
		return
	}
	user, err := h.findOrCreate(r.Context(), profile)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	if !user.IsActive {
		response.Error(w, r, response.Forbidden, "Account is deactivated", nil)
		return
	}
	h.issue(w, r, user, "Login successful")
}

// findOrCreate matches by provider subject first, then by email, and creates
// the user when neither matches.
func (h *AuthHandler) findOrCreate(ctx context.Context, p *service.ExternalProfile) (*models.User, error) {
	user, err := h.Users.UserByProvider(ctx, p.Provider, p.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	user, err = h.Users.UserByEmail(ctx, p.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = models.NewUser(p.Email, p.Identity(), time.Now())
	if err := h.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return h.Users.UserByEmail(ctx, p.Email)
		}
		return nil, err
	}
	h.Cache.Invalidate(ctx, nil, cache.Prefix(usersResource))
	h.Logger.Info("user created from external identity",
		zap.String("user_id", user.ID.Hex()), zap.String("provider", string(p.Provider)))
	return user, nil
}

// issue makes sure the user has a cart and answers with a fresh token pair.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user *models.User, message string) {
	if _, err := h.Carts.Cart(r.Context(), user.ID); err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	pair, err := h.Tokens.Pair(user.ID, user.IsAdmin)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	response.JSON(w, http.StatusOK, TokenResponse{
		Status:       response.StatusSuccess,
		Message:      message,
		Data:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
