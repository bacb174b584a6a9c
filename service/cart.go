package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/utils"
)

// MaxItemQuantity bounds the quantity of a single cart line.
const MaxItemQuantity = 1000

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrCouponNotApplicable = errors.New("coupon is not valid at this time")
	ErrQuantityTooLarge    = fmt.Errorf("quantity must not exceed %d", MaxItemQuantity)
)

// CartStore is the persistence CartService needs; *store.DB satisfies it.
type CartStore interface {
	EnsureCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	IncCartTotal(ctx context.Context, cartID primitive.ObjectID, delta float64) (*models.Cart, error)
	SetCartTotal(ctx context.Context, cartID primitive.ObjectID, total float64) (*models.Cart, error)
	ClearCart(ctx context.Context, cartID primitive.ObjectID) error

	InsertCartItem(ctx context.Context, item *models.CartItem) error
	CartItemByID(ctx context.Context, cartID, itemID primitive.ObjectID) (*models.CartItem, error)
	CartItemByBook(ctx context.Context, cartID, bookID primitive.ObjectID) (*models.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, itemID primitive.ObjectID) (*models.CartItem, error)
	CartItemsOf(ctx context.Context, cartID primitive.ObjectID) ([]models.CartItem, error)
	ListCartItems(ctx context.Context, cartID primitive.ObjectID, q utils.ListQuery) ([]models.CartItem, int64, error)

	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BooksByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Book, error)
	CouponByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	InsertOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
}

// CartService keeps cart.total_amount equal to the sum of price*quantity
// over the cart's items. Each item change applies its delta with a single
// atomic increment; when that fails the total is recomputed from scratch.
type CartService struct {
	store  CartStore
	logger *zap.Logger
	now    func() time.Time
}

func NewCartService(s CartStore, logger *zap.Logger) *CartService {
	return &CartService{store: s, logger: logger, now: time.Now}
}

// Cart returns the user's cart, creating it on first use.
func (s *CartService) Cart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.store.EnsureCart(ctx, userID)
}

// Items returns one page of the cart's items with their books attached.
func (s *CartService) Items(ctx context.Context, userID primitive.ObjectID, q utils.ListQuery) (*models.Cart, []models.CartItem, int64, error) {
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	items, total, err := s.store.ListCartItems(ctx, cart.ID, q)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := s.attachBooks(ctx, items); err != nil {
		return nil, nil, 0, err
	}
	return cart, items, total, nil
}

// Add puts quantity copies of a book in the cart. Adding a book that is
// already there raises the existing line's quantity.
func (s *CartService) Add(ctx context.Context, userID, bookID primitive.ObjectID, quantity int) (*models.CartItem, *models.Cart, error) {
	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var item *models.CartItem
	existing, err := s.store.CartItemByBook(ctx, cart.ID, bookID)
	switch {
	case err == nil:
		if quantity > MaxItemQuantity-existing.Quantity {
			return nil, nil, ErrQuantityTooLarge
		}
		item, err = s.store.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+quantity)
		if err != nil {
			return nil, nil, err
		}
	case errors.Is(err, store.ErrNotFound):
		if quantity > MaxItemQuantity {
			return nil, nil, ErrQuantityTooLarge
		}
		item = &models.CartItem{CartID: cart.ID, BookID: bookID, Quantity: quantity}
		if err := s.store.InsertCartItem(ctx, item); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	cart, err = s.adjust(ctx, cart.ID, book.Price*float64(quantity))
	if err != nil {
		return nil, nil, err
	}
	item.Book = book
	return item, cart, nil
}

// UpdateQuantity sets an item's quantity. Items of other carts are not found.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.CartItem, *models.Cart, error) {
	if quantity > MaxItemQuantity {
		return nil, nil, ErrQuantityTooLarge
	}
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.store.CartItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, nil, err
	}
	book, err := s.store.BookByID(ctx, item.BookID)
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.store.UpdateCartItemQuantity(ctx, item.ID, quantity)
	if err != nil {
		return nil, nil, err
	}
	cart, err = s.adjust(ctx, cart.ID, book.Price*float64(quantity-item.Quantity))
	if err != nil {
		return nil, nil, err
	}
	updated.Book = book
	return updated, cart, nil
}

// Remove deletes an item from the user's cart.
func (s *CartService) Remove(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.CartItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, err
	}
	book, err := s.store.BookByID(ctx, item.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.Recalculate(ctx, cart.ID)
		}
		return nil, err
	}
	return s.adjust(ctx, cart.ID, -book.Price*float64(item.Quantity))
}

// Recalculate rebuilds the total from the items and current book prices.
func (s *CartService) Recalculate(ctx context.Context, cartID primitive.ObjectID) (*models.Cart, error) {
	items, err := s.store.CartItemsOf(ctx, cartID)
	if err != nil {
		return nil, err
	}
	books, err := s.booksOf(ctx, items)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, it := range items {
		if b, ok := books[it.BookID]; ok {
			total += b.Price * float64(it.Quantity)
		}
	}
	return s.store.SetCartTotal(ctx, cartID, models.RoundCents(total))
}

// RepairCarts recalculates every listed cart, logging failures. Used after a
// book disappears from carts.
func (s *CartService) RepairCarts(ctx context.Context, cartIDs []primitive.ObjectID) {
	for _, id := range cartIDs {
		if _, err := s.Recalculate(ctx, id); err != nil {
			s.logger.Error("failed to repair cart total", zap.String("cart_id", id.Hex()), zap.Error(err))
		}
	}
}

// Checkout turns the cart into an order, applying the coupon if given, and
// empties the cart.
func (s *CartService) Checkout(ctx context.Context, userID primitive.ObjectID, couponID *primitive.ObjectID) (*models.Order, error) {
	cart, err := s.store.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.CartItemsOf(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	books, err := s.booksOf(ctx, items)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderItem, 0, len(items))
	subtotal := 0.0
	for _, it := range items {
		book, ok := books[it.BookID]
		if !ok {
			continue
		}
		amount := models.RoundCents(book.Price * float64(it.Quantity))
		subtotal += amount
		lines = append(lines, models.OrderItem{BookID: it.BookID, Quantity: it.Quantity, ItemAmount: amount})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	subtotal = models.RoundCents(subtotal)

	order := &models.Order{
		UserID:      userID,
		Subtotal:    subtotal,
		TotalAmount: subtotal,
		Status:      models.StatusOrdered,
	}
	if couponID != nil {
		coupon, err := s.store.CouponByID(ctx, *couponID)
		if err != nil {
			return nil, err
		}
		if !coupon.Applicable(s.now()) {
			return nil, ErrCouponNotApplicable
		}
		order.CouponID = couponID
		order.TotalAmount = coupon.Apply(subtotal)
	}

	if err := s.store.InsertOrder(ctx, order, lines); err != nil {
		return nil, err
	}
	if err := s.store.ClearCart(ctx, cart.ID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			zap.String("cart_id", cart.ID.Hex()), zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
	return order, nil
}

func (s *CartService) adjust(ctx context.Context, cartID primitive.ObjectID, delta float64) (*models.Cart, error) {
	cart, err := s.store.IncCartTotal(ctx, cartID, delta)
	if err != nil {
		s.logger.Warn("cart total increment failed, recalculating", zap.String("cart_id", cartID.Hex()), zap.Error(err))
		return s.Recalculate(ctx, cartID)
	}
	if cart.TotalAmount < 0 || models.RoundCents(cart.TotalAmount) != cart.TotalAmount {
		return s.Recalculate(ctx, cartID)
	}
	return cart, nil
}

func (s *CartService) booksOf(ctx context.Context, items []models.CartItem) (map[primitive.ObjectID]*models.Book, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.BookID)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.Book{}, nil
	}
	return s.store.BooksByIDs(ctx, ids)
}

func (s *CartService) attachBooks(ctx context.Context, items []models.CartItem) error {
	books, err := s.booksOf(ctx, items)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Book = books[items[i].BookID]
	}
	return nil
}
