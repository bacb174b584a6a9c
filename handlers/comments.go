package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/middleware"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/response"
)

type CommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

func (h *ReviewsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bind(w, r, &req) {
		return
	}
	if _, err := h.Reviews.ReviewByID(r.Context(), reviewID); err != nil {
		storeError(w, r, h.Logger, err, "Review not found", "")
		return
	}
	user := currentUser(r)
	comment := &models.Comment{
		UserID:   user.ID,
		ReviewID: reviewID,
		Comment:  strings.TrimSpace(req.Comment),
	}
	if err := h.Reviews.InsertComment(r.Context(), comment); err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	comment.User = models.AuthorOf(user)
	h.invalidateComments(r.Context())
	response.Success(w, http.StatusCreated, "Comment successfully created", comment)
}

func (h *ReviewsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := middleware.ListQueryFromContext(r)
	key := cache.ListKey(cache.DetailKey(commentsResource, reviewID.Hex()), r.URL.Query())
	serveCached(w, r, h.Cache, h.Logger, key, "Comments successfully retrieved", "Review not found", func(ctx context.Context) (any, error) {
		if _, err := h.Reviews.ReviewByID(ctx, reviewID); err != nil {
			return nil, err
		}
		comments, total, err := h.Reviews.ListReviewComments(ctx, reviewID, q)
		if err != nil {
			return nil, err
		}
		if err := h.attachAuthors(ctx, comments); err != nil {
			return nil, err
		}
		return response.NewPage(comments, q, total), nil
	})
}

func (h *ReviewsHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bind(w, r, &req) {
		return
	}
	comment, err := h.Reviews.CommentByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Comment not found", "")
		return
	}
	if !canModify(currentUser(r), comment.UserID) {
		response.Error(w, r, response.Forbidden, "You can only modify your own comments", nil)
		return
	}
	comment, err = h.Reviews.UpdateComment(r.Context(), id, strings.TrimSpace(req.Comment))
	if err != nil {
		storeError(w, r, h.Logger, err, "Comment not found", "")
		return
	}
	h.invalidateComments(r.Context())
	response.Success(w, http.StatusOK, "Comment successfully updated", comment)
}

func (h *ReviewsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comment, err := h.Reviews.CommentByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Comment not found", "")
		return
	}
	if !canModify(currentUser(r), comment.UserID) {
		response.Error(w, r, response.Forbidden, "You can only delete your own comments", nil)
		return
	}
	comment, err = h.Reviews.DeleteComment(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Comment not found", "")
		return
	}
	h.invalidateComments(r.Context())
	response.Success(w, http.StatusOK, "Comment successfully deleted", comment)
}

// invalidateComments also drops review lists, which embed comments.
func (h *ReviewsHandler) invalidateComments(ctx context.Context) {
	h.Cache.Invalidate(ctx, nil, cache.Prefix(commentsResource), cache.Prefix(reviewsResource))
}
