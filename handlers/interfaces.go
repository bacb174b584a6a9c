package handlers

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/store"
	"github.com/kevinaaaquil/bookstore/utils"
)

// UserStore is the user persistence the handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByProvider(ctx context.Context, provider models.Provider, providerID string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	ListUsers(ctx context.Context, q utils.ListQuery) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, u store.UserUpdate) (*models.User, error)
	GrantAdmin(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	DeactivateUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	DeleteNonAdminUsers(ctx context.Context) (int64, error)
}

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) error
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ListBooks(ctx context.Context, q utils.ListQuery) ([]models.Book, int64, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, u store.BookUpdate) (*models.Book, error)
	SetBookCover(ctx context.Context, id primitive.ObjectID, key string) (*models.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)

	CartIDsWithBook(ctx context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveBookFromCarts(ctx context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteBookFavorites(ctx context.Context, bookID primitive.ObjectID) error
	DeleteBookReviews(ctx context.Context, bookID primitive.ObjectID) error
}

type CouponStore interface {
	InsertCoupon(ctx context.Context, c *models.Coupon) error
	CouponByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	ListCoupons(ctx context.Context, q utils.ListQuery) ([]models.Coupon, int64, error)
	UpdateCoupon(ctx context.Context, id primitive.ObjectID, u store.CouponUpdate) (*models.Coupon, error)
	DeleteCoupon(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
}

type OrderStore interface {
	OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	OrderItemsOf(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
}

type ReviewStore interface {
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)

	InsertReview(ctx context.Context, r *models.Review) error
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListBookReviews(ctx context.Context, bookID primitive.ObjectID, q utils.ListQuery) ([]models.Review, int64, error)
	UpdateReviewRating(ctx context.Context, id primitive.ObjectID, rating int) (*models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)

	InsertComment(ctx context.Context, c *models.Comment) error
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListReviewComments(ctx context.Context, reviewID primitive.ObjectID, q utils.ListQuery) ([]models.Comment, int64, error)
	CommentsOfReviews(ctx context.Context, reviewIDs []primitive.ObjectID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
}

type FavoriteStore interface {
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BooksByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Book, error)
	InsertFavorite(ctx context.Context, f *models.Favorite) error
	DeleteFavorite(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Favorite, error)
	ListFavorites(ctx context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Favorite, int64, error)
}

// Store is everything the router needs from persistence; *store.DB
// implements it.
type Store interface {
	UserStore
	BookStore
	CouponStore
	OrderStore
	ReviewStore
	FavoriteStore
	service.CartStore
	Ping(ctx context.Context) error
}

// Revoker blacklists access tokens.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// ExternalVerifier checks an external identity token such as a Firebase ID token.
type ExternalVerifier interface {
	Verify(ctx context.Context, idToken string) (*service.ExternalProfile, error)
}

// OAuthProvider runs a redirect based login.
type OAuthProvider interface {
	AuthURL(state string) string
	Profile(ctx context.Context, code string) (*service.ExternalProfile, error)
}

// CoverStore keeps book cover images.
type CoverStore interface {
	Upload(ctx context.Context, bookID, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// BookLookup finds catalogue metadata by ISBN.
type BookLookup interface {
	Lookup(ctx context.Context, isbn string) (*service.BookDraft, error)
}
