package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/validation"
)

const usersResource = "users"

type UsersHandler struct {
	Users  UserStore
	Cache  *cache.Cache
	Logger *zap.Logger
}

type RegisterRequest struct {
	FirstName   string      `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string      `json:"last_name" validate:"required,min=1,max=100"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required"`
	BirthDate   models.Date `json:"birth_date" validate:"required"`
	Gender      string      `json:"gender" validate:"omitempty,oneof=female male other"`
	Address     string      `json:"address"`
	PhoneNumber string      `json:"phone_number" validate:"required,phone"`

	// set only by admins; their presence rejects the request
	IsAdmin  any `json:"is_admin"`
	IsActive any `json:"is_active"`
}

type UpdateMeRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
}

// Register creates a local account. Anyone may call it.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var fieldErrs []validation.FieldError
	if verr := validation.ValidateStruct(&req); verr != nil {
		fieldErrs = append(fieldErrs, verr.Errors()...)
	}
	if req.IsAdmin != nil {
		fieldErrs = append(fieldErrs, validation.FieldError{Field: "is_admin", Tag: "forbidden", Message: "is_admin is not allowed"})
	}
	if req.IsActive != nil {
		fieldErrs = append(fieldErrs, validation.FieldError{Field: "is_active", Tag: "forbidden", Message: "is_active is not allowed"})
	}
	if len(fieldErrs) > 0 {
		writeValidation(w, r, validation.NewError(fieldErrs...))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.Users.UserByEmail(r.Context(), email); err == nil {
		response.Error(w, r, response.Duplicate, "Email already exists", nil)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		storeError(w, r, h.Logger, err, "", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	user := models.NewUser(email, models.LocalIdentity{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BirthDate:    req.BirthDate.Time,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
	}, time.Now())
	user.Gender = req.Gender
	user.Address = req.Address

	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		storeError(w, r, h.Logger, err, "", "Phone number already exists")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(usersResource))
	response.Success(w, http.StatusCreated, "User successfully created", user)
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Profile successfully retrieved", currentUser(r))
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if !bind(w, r, &req) {
		return
	}
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &e
	}
	user, err := h.Users.UpdateUser(r.Context(), currentUser(r).ID, store.UserUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		storeError(w, r, h.Logger, err, "User not found", "Email or phone number already exists")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(usersResource))
	response.Success(w, http.StatusOK, "Profile successfully updated", user)
}

// List is admin only. Filters: keyword, is_active, is_admin, role, provider.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	key := cache.ListKey(usersResource, r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Users successfully retrieved", "", func(ctx context.Context) (any, error) {
		users, total, err := h.Users.ListUsers(ctx, q)
		if err != nil {
			return nil, err
		}
		return response.NewPage(users, q, total), nil
	})
}

func (h *UsersHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.Users.GrantAdmin(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "User not found", "User is already an admin")
		return
	}
	h.Logger.Info("admin rights granted",
		zap.String("user_id", id.Hex()), zap.String("granted_by", currentUser(r).ID.Hex()))
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(usersResource))
	response.Success(w, http.StatusOK, "Admin rights granted", user)
}

func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.Users.DeactivateUser(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "User not found", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(usersResource))
	response.Success(w, http.StatusOK, "User successfully deactivated", user)
}

// BulkReset deletes every non-admin user. Only routed when enabled in config.
func (h *UsersHandler) BulkReset(w http.ResponseWriter, r *http.Request) {
	n, err := h.Users.DeleteNonAdminUsers(r.Context())
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	h.Logger.Warn("bulk user reset", zap.Int64("deleted", n), zap.String("by", currentUser(r).ID.Hex()))
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(usersResource))
	response.Success(w, http.StatusOK, "All users successfully deleted", map[string]int64{"deleted": n})
}
