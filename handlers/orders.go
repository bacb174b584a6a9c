package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/validation"
)

const ordersResource = "orders"

type OrdersHandler struct {
	Orders OrderStore
	Carts  *service.CartService
	Cache  *cache.Cache
	Logger *zap.Logger
}

type CheckoutRequest struct {
	CouponID *string `json:"coupon_id" validate:"omitempty,objectid"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

// Checkout turns the caller's cart into an order. An empty body checks out
// without a coupon.
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength != 0 && !bind(w, r, &req) {
		return
	}
	var couponID *primitive.ObjectID
	if req.CouponID != nil && *req.CouponID != "" {
		id, _ := primitive.ObjectIDFromHex(*req.CouponID)
		couponID = &id
	}

	user := currentUser(r)
	order, err := h.Carts.Checkout(r.Context(), user.ID, couponID)
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		response.Error(w, r, response.InvalidBody, "Cart is empty", nil)
		return
	case errors.Is(err, service.ErrCouponNotApplicable):
		writeValidation(w, r, validation.NewError(validation.FieldError{
			Field: "coupon_id", Tag: "applicable", Message: "coupon is not valid at this time",
		}))
		return
	case err != nil:
		storeError(w, r, h.Logger, err, "Coupon not found", "")
		return
	}

	h.Logger.Info("order placed",
		zap.String("order_id", order.ID.Hex()), zap.String("user_id", user.ID.Hex()),
		zap.Float64("total_amount", order.TotalAmount))
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(ordersResource))
	response.Success(w, http.StatusCreated, "Order successfully created", order)
}

// List returns the caller's own orders. Filters: dateFrom, dateTo, status.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	uid := currentUser(r).ID
	key := cache.ListKey(cache.DetailKey(ordersResource, uid.Hex()), r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Orders successfully retrieved", "", func(ctx context.Context) (any, error) {
		orders, total, err := h.Orders.ListOrders(ctx, uid, q)
		if err != nil {
			return nil, err
		}
		return response.NewPage(orders, q, total), nil
	})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.OrderByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Order not found", "")
		return
	}
	if !canModify(currentUser(r), order.UserID) {
		response.Error(w, r, response.Forbidden, "You can only view your own orders", nil)
		return
	}
	items, err := h.Orders.OrderItemsOf(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	order.Items = items
	response.Success(w, http.StatusOK, "Order successfully retrieved", order)
}

// UpdateStatus moves an order forward through its lifecycle. Admin only.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !bind(w, r, &req) {
		return
	}
	next := models.OrderStatus(req.Status)

	order, err := h.Orders.OrderByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Order not found", "")
		return
	}
	if !order.Status.CanAdvanceTo(next) {
		writeValidation(w, r, statusError(order.Status, next))
		return
	}
	updated, err := h.Orders.UpdateOrderStatus(r.Context(), id, order.Status, next)
	if errors.Is(err, store.ErrNotFound) {
		// moved by someone else between the read and the write
		writeValidation(w, r, validation.NewError(validation.FieldError{
			Field: "status", Tag: "forward", Message: "order status changed concurrently, retry",
		}))
		return
	}
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(ordersResource))
	response.Success(w, http.StatusOK, "Order status successfully updated", updated)
}

func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.DeleteOrder(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Order not found", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(ordersResource))
	response.Success(w, http.StatusOK, "Order successfully deleted", order)
}

func statusError(from, to models.OrderStatus) *validation.RequestValidationError {
	return validation.NewError(validation.FieldError{
		Field:   "status",
		Tag:     "forward",
		Message: "status cannot change from " + string(from) + " to " + string(to),
	})
}
