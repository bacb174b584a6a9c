package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

func (db *DB) InsertReview(ctx context.Context, r *models.Review) error {
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now
	res, err := db.Reviews().InsertOne(ctx, r)
	if err != nil {
		return translate(err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, db.Reviews(), bson.M{"_id": id})
}

func (db *DB) ListBookReviews(ctx context.Context, bookID primitive.ObjectID, q utils.ListQuery) ([]models.Review, int64, error) {
	return findPage[models.Review](ctx, db.Reviews(), bson.M{"book_id": bookID}, q)
}

func (db *DB) UpdateReviewRating(ctx context.Context, id primitive.ObjectID, rating int) (*models.Review, error) {
	return updateOne[models.Review](ctx, db.Reviews(), bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": rating, "updatedAt": time.Now()}})
}

// DeleteReview removes the review and its comments.
func (db *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, err := deleteOne[models.Review](ctx, db.Reviews(), bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if _, err := db.Comments().DeleteMany(ctx, bson.M{"review_id": id}); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteBookReviews removes every review of a book and their comments.
func (db *DB) DeleteBookReviews(ctx context.Context, bookID primitive.ObjectID) error {
	reviews, err := findAll[models.Review](ctx, db.Reviews(), bson.M{"book_id": bookID})
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	if _, err := db.Comments().DeleteMany(ctx, bson.M{"review_id": bson.M{"$in": ids}}); err != nil {
		return err
	}
	_, err = db.Reviews().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
