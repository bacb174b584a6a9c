package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the uniqueness constraints and lookup indexes.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{db.Users(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			// phone is only present on local accounts
			{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"phone_number": bson.M{"$type": "string"}})},
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}}},
		}},
		{db.Books(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{db.Carts(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{db.CartItems(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "cart_id", Value: 1}, {Key: "book_id", Value: 1}}},
			{Keys: bson.D{{Key: "book_id", Value: 1}}},
		}},
		{db.Orders(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{db.OrderItems(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "order_id", Value: 1}}},
		}},
		{db.Coupons(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{db.Reviews(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{db.Comments(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "review_id", Value: 1}}},
		}},
		{db.Favorites(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "book_id", Value: 1}}},
		}},
	}
	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("indexes on %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}
