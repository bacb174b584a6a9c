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

const (
	reviewsResource  = "reviews"
	commentsResource = "comments"
)

// ReviewsHandler serves reviews and the comments under them.
type ReviewsHandler struct {
	Reviews ReviewStore
	Cache   *cache.Cache
	Logger  *zap.Logger
}

type CreateReviewRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

type UpdateReviewRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !bind(w, r, &req) {
		return
	}
	if _, err := h.Reviews.BookByID(r.Context(), bookID); err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}
	review := &models.Review{
		UserID:   currentUser(r).ID,
		BookID:   bookID,
		Rating:   req.Rating,
		Comments: []models.Comment{},
	}
	if err := h.Reviews.InsertReview(r.Context(), review); err != nil {
		storeError(w, r, h.Logger, err, "", "You have already reviewed this book")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(reviewsResource))
	response.Success(w, http.StatusCreated, "Review successfully created", review)
}

// List returns a book's reviews with their comments and comment authors.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := middleware.ListQueryFromContext(r)
	key := cache.ListKey(cache.DetailKey(reviewsResource, bookID.Hex()), r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Reviews successfully retrieved", "Book not found", func(ctx context.Context) (any, error) {
		if _, err := h.Reviews.BookByID(ctx, bookID); err != nil {
			return nil, err
		}
		reviews, total, err := h.Reviews.ListBookReviews(ctx, bookID, q)
		if err != nil {
			return nil, err
		}
		if err := h.populate(ctx, reviews); err != nil {
			return nil, err
		}
		return response.NewPage(reviews, q, total), nil
	})
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if !bind(w, r, &req) {
		return
	}
	review, err := h.Reviews.ReviewByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Review not found", "")
		return
	}
	if !canModify(currentUser(r), review.UserID) {
		response.Error(w, r, response.Forbidden, "You can only modify your own reviews", nil)
		return
	}
	review, err = h.Reviews.UpdateReviewRating(r.Context(), id, req.Rating)
	if err != nil {
		storeError(w, r, h.Logger, err, "Review not found", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(reviewsResource))
	response.Success(w, http.StatusOK, "Review successfully updated", review)
}

// Delete removes the review and its comments.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	review, err := h.Reviews.ReviewByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Review not found", "")
		return
	}
	if !canModify(currentUser(r), review.UserID) {
		response.Error(w, r, response.Forbidden, "You can only delete your own reviews", nil)
		return
	}
	review, err = h.Reviews.DeleteReview(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Review not found", "")
		return
	}
	h.Cache.Invalidate(r.Context(), nil, cache.Prefix(reviewsResource), cache.Prefix(commentsResource))
	response.Success(w, http.StatusOK, "Review successfully deleted", review)
}

// populate attaches every review's comments, each with its author.
func (h *ReviewsHandler) populate(ctx context.Context, reviews []models.Review) error {
	ids := distinctIDs(reviews, func(r models.Review) primitive.ObjectID { return r.ID })
	comments, err := h.Reviews.CommentsOfReviews(ctx, ids)
	if err != nil {
		return err
	}
	if err := h.attachAuthors(ctx, comments); err != nil {
		return err
	}
	byReview := make(map[primitive.ObjectID][]models.Comment, len(reviews))
	for _, c := range comments {
		byReview[c.ReviewID] = append(byReview[c.ReviewID], c)
	}
	for i := range reviews {
		reviews[i].Comments = byReview[reviews[i].ID]
		if reviews[i].Comments == nil {
			reviews[i].Comments = []models.Comment{}
		}
	}
	return nil
}

func (h *ReviewsHandler) attachAuthors(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	users, err := h.Reviews.UsersByIDs(ctx, distinctIDs(comments, func(c models.Comment) primitive.ObjectID { return c.UserID }))
	if err != nil {
		return err
	}
	for i := range comments {
		if u, ok := users[comments[i].UserID]; ok {
			comments[i].User = models.AuthorOf(u)
		}
	}
	return nil
}
