package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/response"
	"github.com/kevinaaaquil/bookstore/service"
)

// Blacklist both revokes tokens and answers whether one is revoked.
type Blacklist interface {
	Revoker
	middleware.RevocationList
}

// Deps is everything NewRouter wires together. Firebase, Google and Covers
// are optional; their routes are only mounted when set.
type Deps struct {
	Store     Store
	Cache     *cache.Cache
	Blacklist Blacklist
	Tokens    *service.TokenManager
	Carts     *service.CartService
	Firebase  ExternalVerifier
	Google    OAuthProvider
	Covers    CoverStore
	ISBN      BookLookup
	Logger    *zap.Logger

	RefreshTTL         time.Duration
	CORSOrigins        []string
	RateLimitPerMinute int
	AllowBulkReset     bool
}

func NewRouter(d Deps) http.Handler {
	auth := middleware.NewAuth(d.Tokens, d.Store, d.Blacklist, d.Logger)
	authed := func(r chi.Router) chi.Router {
		return r.With(auth.Authenticate, middleware.RequireActive)
	}
	admin := func(r chi.Router) chi.Router {
		return r.With(auth.Authenticate, middleware.RequireActive, middleware.RequireAdmin)
	}
	list := middleware.ListQuery

	authH := &AuthHandler{
		Users: d.Store, Cache: d.Cache, Carts: d.Carts, Tokens: d.Tokens, Blacklist: d.Blacklist,
		Firebase: d.Firebase, Google: d.Google, RefreshTTL: d.RefreshTTL, Logger: d.Logger,
	}
	usersH := &UsersHandler{Users: d.Store, Cache: d.Cache, Logger: d.Logger}
	booksH := &BooksHandler{Books: d.Store, Carts: d.Carts, Cache: d.Cache, Covers: d.Covers, ISBN: d.ISBN, Logger: d.Logger}
	cartH := &CartHandler{Carts: d.Carts, Logger: d.Logger}
	ordersH := &OrdersHandler{Orders: d.Store, Carts: d.Carts, Cache: d.Cache, Logger: d.Logger}
	couponsH := &CouponsHandler{Coupons: d.Store, Cache: d.Cache, Logger: d.Logger}
	reviewsH := &ReviewsHandler{Reviews: d.Store, Cache: d.Cache, Logger: d.Logger}
	favH := &FavoritesHandler{Favorites: d.Store, Cache: d.Cache, Logger: d.Logger}
	healthH := &HealthHandler{DB: d.Store, Cache: d.Cache, Logger: d.Logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.RateLimit(d.RateLimitPerMinute))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, response.NotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, response.MethodNotAllowed, "", nil)
	})

	r.Get("/", healthH.Welcome)
	r.Get("/health", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/refresh", authH.Refresh)
		r.With(auth.Authenticate).Post("/logout", authH.Logout)
		if d.Firebase != nil {
			r.Post("/firebase", authH.FirebaseLogin)
		}
		if d.Google != nil {
			r.Get("/google", authH.GoogleLogin)
			r.Get("/google/callback", authH.GoogleCallback)
		}
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", usersH.Register)
		authed(r).Get("/me", usersH.Me)
		authed(r).Patch("/me", usersH.UpdateMe)
		authed(r).With(list).Get("/me/favorites", favH.Mine)

		admin(r).With(list).Get("/", usersH.List)
		admin(r).Patch("/admin/{id}", usersH.GrantAdmin)
		admin(r).Delete("/{id}/deactivate", usersH.Deactivate)
		if d.AllowBulkReset {
			admin(r).Delete("/", usersH.BulkReset)
		}
	})

	r.Route("/books", func(r chi.Router) {
		r.With(list).Get("/", booksH.List)
		r.Get("/{id}", booksH.Get)
		r.With(list).Get("/{id}/reviews", reviewsH.List)
		authed(r).Post("/{id}/reviews", reviewsH.Create)

		admin(r).Post("/", booksH.Create)
		admin(r).Patch("/{id}", booksH.Update)
		admin(r).Delete("/{id}", booksH.Delete)
		if d.ISBN != nil {
			admin(r).Get("/lookup/{isbn}", booksH.Lookup)
		}
		if d.Covers != nil {
			r.Get("/{id}/cover", booksH.Cover)
			admin(r).Put("/{id}/cover", booksH.UploadCover)
			admin(r).Post("/{id}/cover/import", booksH.ImportCover)
		}
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireActive)
		r.With(list).Get("/", cartH.Get)
		r.Post("/items", cartH.AddItem)
		r.Patch("/items/{itemId}", cartH.UpdateItem)
		r.Delete("/items/{itemId}", cartH.RemoveItem)
		r.Post("/recalculate", cartH.Recalculate)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireActive)
		r.Post("/", ordersH.Checkout)
		r.With(list).Get("/", ordersH.List)
		r.Get("/{id}", ordersH.Get)
		r.With(middleware.RequireAdmin).Patch("/{id}/status", ordersH.UpdateStatus)
		r.With(middleware.RequireAdmin).Delete("/{id}", ordersH.Delete)
	})

	r.Route("/coupons", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireActive, middleware.RequireAdmin)
		r.With(list).Get("/", couponsH.List)
		r.Post("/", couponsH.Create)
		r.Get("/{id}", couponsH.Get)
		r.Patch("/{id}", couponsH.Update)
		r.Delete("/{id}", couponsH.Delete)
	})

	r.Route("/reviews/{id}", func(r chi.Router) {
		authed(r).Patch("/", reviewsH.Update)
		authed(r).Delete("/", reviewsH.Delete)
		r.With(list).Get("/comments", reviewsH.ListComments)
		authed(r).Post("/comments", reviewsH.CreateComment)
	})

	r.Route("/comments/{id}", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireActive)
		r.Patch("/", reviewsH.UpdateComment)
		r.Delete("/", reviewsH.DeleteComment)
	})

	r.Route("/{id}/favorite", func(r chi.Router) {
		r.Use(auth.Authenticate, middleware.RequireActive)
		r.Post("/", favH.Add)
		r.Delete("/", favH.Remove)
	})

	return r
}
