package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/validation"
)

const (
	couponsResource = "coupons"
	couponResource  = "coupon"
)

type CouponsHandler struct {
	Coupons CouponStore
	Cache   *cache.Cache
	Logger  *zap.Logger
}

type CouponRequest struct {
	Code         *string      `json:"code"`
	DiscountRate *float64     `json:"discount_rate"`
	StartAt      *models.Date `json:"start_at"`
	EndAt        *models.Date `json:"end_at"`
	IsValid      *bool        `json:"is_valid"`
}

// couponInput is what a coupon must look like once a request is applied.
type couponInput struct {
	Code         string    `json:"code" validate:"required,min=3,max=32,alphanum"`
	DiscountRate float64   `json:"discount_rate" validate:"gt=0,lte=100"`
	StartAt      time.Time `json:"start_at" validate:"required"`
	EndAt        time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
}

// merge overlays the request on base, which is the stored coupon on PATCH.
func (req *CouponRequest) merge(base couponInput) couponInput {
	in := base
	if req.Code != nil {
		in.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.DiscountRate != nil {
		in.DiscountRate = *req.DiscountRate
	}
	if req.StartAt != nil {
		in.StartAt = req.StartAt.Time
	}
	if req.EndAt != nil {
		in.EndAt = req.EndAt.Time
	}
	return in
}

func (h *CouponsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	key := cache.ListKey(couponsResource, r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Coupons successfully retrieved", "", func(ctx context.Context) (any, error) {
		coupons, total, err := h.Coupons.ListCoupons(ctx, q)
		if err != nil {
			return nil, err
		}
		return response.NewPage(coupons, q, total), nil
	})
}

func (h *CouponsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	serveCached(w, r, h.Cache, h.Logger, cache.DetailKey(couponResource, id.Hex()),
		"Coupon successfully retrieved", "Coupon not found", func(ctx context.Context) (any, error) {
			return h.Coupons.CouponByID(ctx, id)
		})
}

func (h *CouponsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := req.merge(couponInput{})
	if verr := validation.ValidateStruct(&in); verr != nil {
		writeValidation(w, r, verr)
		return
	}
	coupon := &models.Coupon{
		CreatedBy:    currentUser(r).ID,
		Code:         in.Code,
		DiscountRate: in.DiscountRate,
		StartAt:      in.StartAt,
		EndAt:        in.EndAt,
		IsValid:      req.IsValid == nil || *req.IsValid,
	}
	if err := h.Coupons.InsertCoupon(r.Context(), coupon); err != nil {
		storeError(w, r, h.Logger, err, "", "Coupon code already exists")
		return
	}
	h.invalidate(r.Context(), coupon.ID.Hex())
	response.Success(w, http.StatusCreated, "Coupon successfully created", coupon)
}

// Update validates the coupon as it will be after the patch, so moving one
// bound of the window is checked against the stored other.
func (h *CouponsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	current, err := h.Coupons.CouponByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Coupon not found", "")
		return
	}
	in := req.merge(couponInput{
		Code:         current.Code,
		DiscountRate: current.DiscountRate,
		StartAt:      current.StartAt,
		EndAt:        current.EndAt,
	})
	if verr := validation.ValidateStruct(&in); verr != nil {
		writeValidation(w, r, verr)
		return
	}

	u := store.CouponUpdate{IsValid: req.IsValid}
	if req.Code != nil {
		u.Code = &in.Code
	}
	if req.DiscountRate != nil {
		u.DiscountRate = &in.DiscountRate
	}
	if req.StartAt != nil {
		u.StartAt = &in.StartAt
	}
	if req.EndAt != nil {
		u.EndAt = &in.EndAt
	}
	coupon, err := h.Coupons.UpdateCoupon(r.Context(), id, u)
	if err != nil {
		storeError(w, r, h.Logger, err, "Coupon not found", "Coupon code already exists")
		return
	}
	h.invalidate(r.Context(), id.Hex())
	response.Success(w, http.StatusOK, "Coupon successfully updated", coupon)
}

func (h *CouponsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	coupon, err := h.Coupons.DeleteCoupon(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Coupon not found", "")
		return
	}
	h.invalidate(r.Context(), id.Hex())
	response.Success(w, http.StatusOK, "Coupon successfully deleted", coupon)
}

func (h *CouponsHandler) invalidate(ctx context.Context, id string) {
	h.Cache.Invalidate(ctx, []string{cache.DetailKey(couponResource, id)}, cache.Prefix(couponsResource))
}
