package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/validation"
)

type CartHandler struct {
	Carts  *service.CartService
	Logger *zap.Logger
}

type AddCartItemRequest struct {
	BookID   string `json:"book_id" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=1000"`
}

// CartView is the body of GET /cart.
type CartView struct {
	Cart  *models.Cart                   `json:"cart"`
	Items response.Page[models.CartItem] `json:"items"`
}

// CartItemView answers item mutations with the item and the re-totalled cart.
type CartItemView struct {
	Item *models.CartItem `json:"item,omitempty"`
	Cart *models.Cart     `json:"cart"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	cart, items, total, err := h.Carts.Items(r.Context(), currentUser(r).ID, q)
	if err != nil {
		storeError(w, r, h.Logger, err, "Cart not found", "")
		return
	}
	response.Success(w, http.StatusOK, "Cart successfully retrieved", CartView{
		Cart:  cart,
		Items: response.NewPage(items, q, total),
	})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !bind(w, r, &req) {
		return
	}
	bookID, _ := primitive.ObjectIDFromHex(req.BookID)
	item, cart, err := h.Carts.Add(r.Context(), currentUser(r).ID, bookID, req.Quantity)
	if err != nil {
		h.itemError(w, r, err, "Book not found")
		return
	}
	response.Success(w, http.StatusCreated, "Item successfully added to cart", CartItemView{Item: item, Cart: cart})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !bind(w, r, &req) {
		return
	}
	item, cart, err := h.Carts.UpdateQuantity(r.Context(), currentUser(r).ID, itemID, req.Quantity)
	if err != nil {
		h.itemError(w, r, err, "Cart item not found")
		return
	}
	response.Success(w, http.StatusOK, "Cart item successfully updated", CartItemView{Item: item, Cart: cart})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	cart, err := h.Carts.Remove(r.Context(), currentUser(r).ID, itemID)
	if err != nil {
		storeError(w, r, h.Logger, err, "Cart item not found", "")
		return
	}
	response.Success(w, http.StatusOK, "Cart item successfully removed", CartItemView{Cart: cart})
}

// Recalculate rebuilds the caller's cart total from its items.
func (h *CartHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.Carts.Cart(ctx, currentUser(r).ID)
	if err != nil {
		storeError(w, r, h.Logger, err, "Cart not found", "")
		return
	}
	cart, err = h.Carts.Recalculate(ctx, cart.ID)
	if err != nil {
		storeError(w, r, h.Logger, err, "Cart not found", "")
		return
	}
	response.Success(w, http.StatusOK, "Cart total recalculated", cart)
}

// itemError answers 422 on the quantity field when a line would grow past
// its bound, and maps everything else as storeError does.
func (h *CartHandler) itemError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, service.ErrQuantityTooLarge) {
		writeValidation(w, r, validation.NewError(validation.FieldError{Field: "quantity", Tag: "lte", Message: err.Error()}))
		return
	}
	storeError(w, r, h.Logger, err, notFound, "")
}
