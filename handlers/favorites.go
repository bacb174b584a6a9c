package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
)

const favoritesResource = "favorites"

type FavoritesHandler struct {
	Favorites FavoriteStore
	Cache     *cache.Cache
	Logger    *zap.Logger
}

// Add favorites the book {id} for the caller.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	book, err := h.Favorites.BookByID(r.Context(), bookID)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}
	fav := &models.Favorite{UserID: currentUser(r).ID, BookID: bookID}
	if err := h.Favorites.InsertFavorite(r.Context(), fav); err != nil {
		storeError(w, r, h.Logger, err, "", "Book is already in favorites")
		return
	}
	markCover(book)
	fav.Book = book
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(favoritesResource))
	response.Success(w, http.StatusCreated, "Book added to favorites", fav)
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fav, err := h.Favorites.DeleteFavorite(r.Context(), currentUser(r).ID, bookID)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book is not in favorites", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(favoritesResource))
	response.Success(w, http.StatusOK, "Book removed from favorites", fav)
}

// Mine lists the caller's favorites with their books.
func (h *FavoritesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	uid := currentUser(r).ID
	key := cache.ListKey(cache.DetailKey(favoritesResource, uid.Hex()), r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Favorites successfully retrieved", "", func(ctx context.Context) (any, error) {
		favs, total, err := h.Favorites.ListFavorites(ctx, uid, q)
		if err != nil {
			return nil, err
		}
		if len(favs) > 0 {
			books, err := h.Favorites.BooksByIDs(ctx, distinctIDs(favs, func(f models.Favorite) primitive.ObjectID { return f.BookID }))
			if err != nil {
				return nil, err
			}
			for i := range favs {
				if b, ok := books[favs[i].BookID]; ok {
					markCover(b)
					favs[i].Book = b
				}
			}
		}
		return response.NewPage(favs, q, total), nil
	})
}
