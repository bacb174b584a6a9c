package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/utils"
)

// memStore is an in-memory Store. Lists ignore filters and sort by id.
type memStore struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*models.User
	books     map[primitive.ObjectID]*models.Book
	carts     map[primitive.ObjectID]*models.Cart
	items     map[primitive.ObjectID]*models.CartItem
	coupons   map[primitive.ObjectID]*models.Coupon
	orders    map[primitive.ObjectID]*models.Order
	lines     map[primitive.ObjectID]models.OrderItem
	reviews   map[primitive.ObjectID]*models.Review
	comments  map[primitive.ObjectID]*models.Comment
	favorites map[primitive.ObjectID]*models.Favorite

	bookLists int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[primitive.ObjectID]*models.User{},
		books:     map[primitive.ObjectID]*models.Book{},
		carts:     map[primitive.ObjectID]*models.Cart{},
		items:     map[primitive.ObjectID]*models.CartItem{},
		coupons:   map[primitive.ObjectID]*models.Coupon{},
		orders:    map[primitive.ObjectID]*models.Order{},
		lines:     map[primitive.ObjectID]models.OrderItem{},
		reviews:   map[primitive.ObjectID]*models.Review{},
		comments:  map[primitive.ObjectID]*models.Comment{},
		favorites: map[primitive.ObjectID]*models.Favorite{},
	}
}

func values[T any](m map[primitive.ObjectID]*T, keep func(*T) bool) []T {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = *m[id]
	}
	return out
}

func page[T any](all []T, q utils.ListQuery) ([]T, int64) {
	total := int64(len(all))
	if q.Offset >= len(all) {
		return []T{}, total
	}
	end := q.Offset + q.Size
	if end > len(all) {
		end = len(all)
	}
	return all[q.Offset:end], total
}

func get[T any](m map[primitive.ObjectID]*T, id primitive.ObjectID) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

// users

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.users {
		if o.Email == u.Email || (u.PhoneNumber != "" && o.PhoneNumber == u.PhoneNumber) {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.users, id)
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UserByProvider(_ context.Context, p models.Provider, providerID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Provider == p && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]*models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) ListUsers(_ context.Context, q utils.ListQuery) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.users, nil), q)
	return out, total, nil
}

func (m *memStore) UpdateUser(_ context.Context, id primitive.ObjectID, u store.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Address != nil {
		user.Address = *u.Address
	}
	if u.PhoneNumber != nil {
		user.PhoneNumber = *u.PhoneNumber
	}
	cp := *user
	return &cp, nil
}

func (m *memStore) GrantAdmin(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if user.IsAdmin {
		return nil, store.ErrDuplicate
	}
	user.IsAdmin = true
	cp := *user
	return &cp, nil
}

func (m *memStore) DeactivateUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	user.IsActive = false
	cp := *user
	return &cp, nil
}

func (m *memStore) DeleteNonAdminUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, u := range m.users {
		if !u.IsAdmin {
			delete(m.users, id)
			n++
		}
	}
	return n, nil
}

// books

func (m *memStore) InsertBook(_ context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.books {
		if o.ISBN == b.ISBN {
			return store.ErrDuplicate
		}
	}
	b.ID = primitive.NewObjectID()
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *memStore) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.books, id)
}

func (m *memStore) BooksByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]*models.Book{}
	for _, id := range ids {
		if b, ok := m.books[id]; ok {
			cp := *b
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) ListBooks(_ context.Context, q utils.ListQuery) ([]models.Book, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookLists++
	title := strings.ToLower(q.Filters.Get("title"))
	out, total := page(values(m.books, func(b *models.Book) bool {
		return title == "" || strings.Contains(strings.ToLower(b.Title), title)
	}), q)
	return out, total, nil
}

func (m *memStore) UpdateBook(_ context.Context, id primitive.ObjectID, u store.BookUpdate) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Summary != nil {
		b.Summary = *u.Summary
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) SetBookCover(_ context.Context, id primitive.ObjectID, key string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	b.CoverKey = key
	cp := *b
	return &cp, nil
}

func (m *memStore) DeleteBook(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := get(m.books, id)
	if err != nil {
		return nil, err
	}
	delete(m.books, id)
	return b, nil
}

func (m *memStore) CartIDsWithBook(_ context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[primitive.ObjectID]bool{}
	var carts []primitive.ObjectID
	for _, it := range m.items {
		if it.BookID == bookID && !seen[it.CartID] {
			seen[it.CartID] = true
			carts = append(carts, it.CartID)
		}
	}
	return carts, nil
}

func (m *memStore) RemoveBookFromCarts(_ context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var carts []primitive.ObjectID
	for id, it := range m.items {
		if it.BookID == bookID {
			carts = append(carts, it.CartID)
			delete(m.items, id)
		}
	}
	return carts, nil
}

func (m *memStore) DeleteBookFavorites(_ context.Context, bookID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.favorites {
		if f.BookID == bookID {
			delete(m.favorites, id)
		}
	}
	return nil
}

func (m *memStore) DeleteBookReviews(_ context.Context, bookID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.reviews {
		if r.BookID != bookID {
			continue
		}
		for cid, c := range m.comments {
			if c.ReviewID == id {
				delete(m.comments, cid)
			}
		}
		delete(m.reviews, id)
	}
	return nil
}

// carts

func (m *memStore) EnsureCart(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Cart{ID: primitive.NewObjectID(), UserID: userID}
	m.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) IncCartTotal(_ context.Context, cartID primitive.ObjectID, delta float64) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[cartID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.TotalAmount = models.RoundCents(c.TotalAmount + delta)
	cp := *c
	return &cp, nil
}

func (m *memStore) SetCartTotal(_ context.Context, cartID primitive.ObjectID, total float64) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[cartID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.TotalAmount = total
	cp := *c
	return &cp, nil
}

func (m *memStore) ClearCart(_ context.Context, cartID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		if it.CartID == cartID {
			delete(m.items, id)
		}
	}
	if c, ok := m.carts[cartID]; ok {
		c.TotalAmount = 0
	}
	return nil
}

func (m *memStore) InsertCartItem(_ context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = primitive.NewObjectID()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) CartItemByID(_ context.Context, cartID, itemID primitive.ObjectID) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok || it.CartID != cartID {
		return nil, store.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memStore) CartItemByBook(_ context.Context, cartID, bookID primitive.ObjectID) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.CartID == cartID && it.BookID == bookID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateCartItemQuantity(_ context.Context, itemID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	it.Quantity = quantity
	cp := *it
	return &cp, nil
}

func (m *memStore) DeleteCartItem(_ context.Context, itemID primitive.ObjectID) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, err := get(m.items, itemID)
	if err != nil {
		return nil, err
	}
	delete(m.items, itemID)
	return it, nil
}

func (m *memStore) CartItemsOf(_ context.Context, cartID primitive.ObjectID) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return values(m.items, func(it *models.CartItem) bool { return it.CartID == cartID }), nil
}

func (m *memStore) ListCartItems(ctx context.Context, cartID primitive.ObjectID, q utils.ListQuery) ([]models.CartItem, int64, error) {
	all, _ := m.CartItemsOf(ctx, cartID)
	out, total := page(all, q)
	return out, total, nil
}

// coupons

func (m *memStore) InsertCoupon(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.coupons {
		if o.Code == c.Code {
			return store.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	m.coupons[c.ID] = &cp
	return nil
}

func (m *memStore) CouponByID(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.coupons, id)
}

func (m *memStore) ListCoupons(_ context.Context, q utils.ListQuery) ([]models.Coupon, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.coupons, nil), q)
	return out, total, nil
}

func (m *memStore) UpdateCoupon(_ context.Context, id primitive.ObjectID, u store.CouponUpdate) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u.Code != nil {
		c.Code = *u.Code
	}
	if u.DiscountRate != nil {
		c.DiscountRate = *u.DiscountRate
	}
	if u.StartAt != nil {
		c.StartAt = *u.StartAt
	}
	if u.EndAt != nil {
		c.EndAt = *u.EndAt
	}
	if u.IsValid != nil {
		c.IsValid = *u.IsValid
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) DeleteCoupon(_ context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := get(m.coupons, id)
	if err != nil {
		return nil, err
	}
	delete(m.coupons, id)
	return c, nil
}

// orders

func (m *memStore) InsertOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = primitive.NewObjectID()
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].OrderID = order.ID
		m.lines[items[i].ID] = items[i]
	}
	cp := *order
	m.orders[order.ID] = &cp
	order.Items = items
	return nil
}

func (m *memStore) OrderByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.orders, id)
}

func (m *memStore) OrderItemsOf(_ context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OrderItem{}
	for _, l := range m.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) ListOrders(_ context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.orders, func(o *models.Order) bool { return o.UserID == userID }), q)
	return out, total, nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return nil, store.ErrNotFound
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

func (m *memStore) DeleteOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := get(m.orders, id)
	if err != nil {
		return nil, err
	}
	delete(m.orders, id)
	return o, nil
}

// reviews and comments

func (m *memStore) InsertReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.reviews {
		if o.UserID == r.UserID && o.BookID == r.BookID {
			return store.ErrDuplicate
		}
	}
	r.ID = primitive.NewObjectID()
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *memStore) ReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.reviews, id)
}

func (m *memStore) ListBookReviews(_ context.Context, bookID primitive.ObjectID, q utils.ListQuery) ([]models.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.reviews, func(r *models.Review) bool { return r.BookID == bookID }), q)
	return out, total, nil
}

func (m *memStore) UpdateReviewRating(_ context.Context, id primitive.ObjectID, rating int) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Rating = rating
	cp := *r
	return &cp, nil
}

func (m *memStore) DeleteReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := get(m.reviews, id)
	if err != nil {
		return nil, err
	}
	delete(m.reviews, id)
	for cid, c := range m.comments {
		if c.ReviewID == id {
			delete(m.comments, cid)
		}
	}
	return r, nil
}

func (m *memStore) InsertComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *memStore) CommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.comments, id)
}

func (m *memStore) ListReviewComments(_ context.Context, reviewID primitive.ObjectID, q utils.ListQuery) ([]models.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.comments, func(c *models.Comment) bool { return c.ReviewID == reviewID }), q)
	return out, total, nil
}

func (m *memStore) CommentsOfReviews(_ context.Context, reviewIDs []primitive.ObjectID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range reviewIDs {
		want[id] = true
	}
	return values(m.comments, func(c *models.Comment) bool { return want[c.ReviewID] }), nil
}

func (m *memStore) UpdateComment(_ context.Context, id primitive.ObjectID, text string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.Comment = text
	cp := *c
	return &cp, nil
}

func (m *memStore) DeleteComment(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := get(m.comments, id)
	if err != nil {
		return nil, err
	}
	delete(m.comments, id)
	return c, nil
}

// favorites

func (m *memStore) InsertFavorite(_ context.Context, f *models.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.favorites {
		if o.UserID == f.UserID && o.BookID == f.BookID {
			return store.ErrDuplicate
		}
	}
	f.ID = primitive.NewObjectID()
	cp := *f
	m.favorites[f.ID] = &cp
	return nil
}

func (m *memStore) DeleteFavorite(_ context.Context, userID, bookID primitive.ObjectID) (*models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.favorites {
		if f.UserID == userID && f.BookID == bookID {
			delete(m.favorites, id)
			return f, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListFavorites(_ context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Favorite, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := page(values(m.favorites, func(f *models.Favorite) bool { return f.UserID == userID }), q)
	return out, total, nil
}
