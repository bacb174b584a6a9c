package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

// InsertFavorite returns ErrDuplicate when the pair already exists.
func (db *DB) InsertFavorite(ctx context.Context, f *models.Favorite) error {
	now := time.Now()
	f.CreatedAt, f.UpdatedAt = now, now
	res, err := db.Favorites().InsertOne(ctx, f)
	if err != nil {
		return translate(err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) DeleteFavorite(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Favorite, error) {
	return deleteOne[models.Favorite](ctx, db.Favorites(), bson.M{"user_id": userID, "book_id": bookID})
}

func (db *DB) ListFavorites(ctx context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Favorite, int64, error) {
	return findPage[models.Favorite](ctx, db.Favorites(), bson.M{"user_id": userID}, q)
}

func (db *DB) DeleteBookFavorites(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := db.Favorites().DeleteMany(ctx, bson.M{"book_id": bookID})
	return err
}
