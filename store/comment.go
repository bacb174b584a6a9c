package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

func (db *DB) InsertComment(ctx context.Context, c *models.Comment) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := db.Comments().InsertOne(ctx, c)
	if err != nil {
		return translate(err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	return findOne[models.Comment](ctx, db.Comments(), bson.M{"_id": id})
}

func (db *DB) ListReviewComments(ctx context.Context, reviewID primitive.ObjectID, q utils.ListQuery) ([]models.Comment, int64, error) {
	return findPage[models.Comment](ctx, db.Comments(), bson.M{"review_id": reviewID}, q)
}

// CommentsOfReviews returns the comments of several reviews, oldest first.
func (db *DB) CommentsOfReviews(ctx context.Context, reviewIDs []primitive.ObjectID) ([]models.Comment, error) {
	if len(reviewIDs) == 0 {
		return nil, nil
	}
	return findAll[models.Comment](ctx, db.Comments(), bson.M{"review_id": bson.M{"$in": reviewIDs}})
}

func (db *DB) UpdateComment(ctx context.Context, id primitive.ObjectID, text string) (*models.Comment, error) {
	return updateOne[models.Comment](ctx, db.Comments(), bson.M{"_id": id},
		bson.M{"$set": bson.M{"comment": text, "updatedAt": time.Now()}})
}

func (db *DB) DeleteComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	return deleteOne[models.Comment](ctx, db.Comments(), bson.M{"_id": id})
}
