package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
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

const (
	booksResource = "books"
	bookResource  = "book"
)

type BooksHandler struct {
	Books  BookStore
	Carts  *service.CartService
	Cache  *cache.Cache
	Covers CoverStore // nil when S3 is not configured
	ISBN   BookLookup
	Logger *zap.Logger
}

type CreateBookRequest struct {
	Title           string      `json:"title" validate:"required"`
	Author          string      `json:"author" validate:"required"`
	LiteraryGenre   string      `json:"literary_genre" validate:"required,genre"`
	PublicationDate models.Date `json:"publication_date" validate:"required"`
	Publisher       string      `json:"publisher" validate:"required"`
	Price           *float64    `json:"price" validate:"required,gte=0"`
	ISBN            string      `json:"isbn" validate:"required"`
	Summary         string      `json:"summary" validate:"required"`
}

type UpdateBookRequest struct {
	Title           *string      `json:"title" validate:"omitempty,min=1"`
	Author          *string      `json:"author" validate:"omitempty,min=1"`
	LiteraryGenre   *string      `json:"literary_genre" validate:"omitempty,genre"`
	PublicationDate *models.Date `json:"publication_date"`
	Publisher       *string      `json:"publisher" validate:"omitempty,min=1"`
	Price           *float64     `json:"price" validate:"omitempty,gte=0"`
	ISBN            *string      `json:"isbn" validate:"omitempty,min=1"`
	Summary         *string      `json:"summary" validate:"omitempty,min=1"`
}

// List is public. Filters: title, author, publisher, literary_genre,
// minPrice, maxPrice.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := middleware.ListQueryFromContext(r)
	key := cache.ListKey(booksResource, r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Books successfully retrieved", "", func(ctx context.Context) (any, error) {
		books, total, err := h.Books.ListBooks(ctx, q)
		if err != nil {
			return nil, err
		}
		for i := range books {
			markCover(&books[i])
		}
		return response.NewPage(books, q, total), nil
	})
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	key := cache.DetailKey(bookResource, id.Hex())
	serveCached(w, r, h.Cache, h.Logger, key, "Book successfully retrieved", "Book not found", func(ctx context.Context) (any, error) {
		book, err := h.Books.BookByID(ctx, id)
		if err != nil {
			return nil, err
		}
		markCover(book)
		return book, nil
	})
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !bind(w, r, &req) {
		return
	}
	book := &models.Book{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		LiteraryGenre:   req.LiteraryGenre,
		PublicationDate: req.PublicationDate.Time,
		Publisher:       strings.TrimSpace(req.Publisher),
		Price:           *req.Price,
		ISBN:            strings.TrimSpace(req.ISBN),
		Summary:         req.Summary,
	}
	if err := h.Books.InsertBook(r.Context(), book); err != nil {
		storeError(w, r, h.Logger, err, "", "A book with this ISBN already exists")
		return
	}
	h.invalidate(r.Context(), book.ID)
	response.Success(w, http.StatusCreated, "Book successfully created", book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateBookRequest
	if !bind(w, r, &req) {
		return
	}
	u := store.BookUpdate{
		Title:         req.Title,
		Author:        req.Author,
		LiteraryGenre: req.LiteraryGenre,
		Publisher:     req.Publisher,
		Price:         req.Price,
		ISBN:          req.ISBN,
		Summary:       req.Summary,
	}
	if req.PublicationDate != nil && !req.PublicationDate.IsZero() {
		u.PublicationDate = &req.PublicationDate.Time
	}
	book, err := h.Books.UpdateBook(r.Context(), id, u)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "A book with this ISBN already exists")
		return
	}
	if req.Price != nil {
		h.repriceCarts(r.Context(), id)
	}
	h.invalidate(r.Context(), id)
	markCover(book)
	response.Success(w, http.StatusOK, "Book successfully updated", book)
}

// Delete removes the book and everything that points at it: cart lines
// (carts are re-totalled), favorites, reviews with their comments, and the
// cover object.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	book, err := h.Books.DeleteBook(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}

	ctx := r.Context()
	cartIDs, err := h.Books.RemoveBookFromCarts(ctx, id)
	if err != nil {
		h.Logger.Error("failed to remove deleted book from carts", zap.String("book_id", id.Hex()), zap.Error(err))
	}
	h.Carts.RepairCarts(ctx, cartIDs)
	if err := h.Books.DeleteBookFavorites(ctx, id); err != nil {
		h.Logger.Error("failed to remove favorites of deleted book", zap.String("book_id", id.Hex()), zap.Error(err))
	}
	if err := h.Books.DeleteBookReviews(ctx, id); err != nil {
		h.Logger.Error("failed to remove reviews of deleted book", zap.String("book_id", id.Hex()), zap.Error(err))
	}
	if book.CoverKey != "" && h.Covers != nil {
		if err := h.Covers.Delete(ctx, book.CoverKey); err != nil {
			h.Logger.Warn("failed to delete cover object", zap.String("key", book.CoverKey), zap.Error(err))
		}
	}

	h.invalidate(ctx, id, cache.Prefix(reviewsResource), cache.Prefix(commentsResource))
	response.Success(w, http.StatusOK, "Book successfully deleted", book)
}

// Lookup returns catalogue metadata for an ISBN, ready to be reviewed and
// posted to /books.
func (h *BooksHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	draft, err := h.ISBN.Lookup(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidISBN):
			writeValidation(w, r, validation.NewError(validation.FieldError{Field: "isbn", Tag: "isbn", Message: err.Error()}))
			return
		case errors.Is(err, service.ErrISBNNotFound):
			response.Error(w, r, response.NotFound, "No book found for this ISBN", nil)
			return
		}
		h.Logger.Warn("isbn lookup failed", zap.String("isbn", chi.URLParam(r, "isbn")), zap.Error(err))
		response.Error(w, r, response.Internal, "ISBN lookup failed", nil)
		return
	}
	response.Success(w, http.StatusOK, "Book metadata retrieved", draft)
}

// repriceCarts re-totals every cart holding the book after a price change.
func (h *BooksHandler) repriceCarts(ctx context.Context, id primitive.ObjectID) {
	cartIDs, err := h.Books.CartIDsWithBook(ctx, id)
	if err != nil {
		h.Logger.Error("failed to find carts of repriced book", zap.String("book_id", id.Hex()), zap.Error(err))
		return
	}
	h.Carts.RepairCarts(ctx, cartIDs)
}

// invalidate drops the book's detail key and every books and favorites
// list, plus any extra patterns.
func (h *BooksHandler) invalidate(ctx context.Context, id primitive.ObjectID, extra ...string) {
	patterns := append([]string{cache.Prefix(booksResource), cache.Prefix(favoritesResource)}, extra...)
	h.Cache.Invalidate(ctx, []string{cache.DetailKey(bookResource, id.Hex())}, patterns...)
}

func markCover(b *models.Book) {
	b.HasCover = b.CoverKey != ""
}
