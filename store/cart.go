package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

func (db *DB) CartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return findOne[models.Cart](ctx, db.Carts(), bson.M{"user_id": userID})
}

func (db *DB) CartByID(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	return findOne[models.Cart](ctx, db.Carts(), bson.M{"_id": id})
}

// EnsureCart returns the user's cart, creating an empty one on first use.
func (db *DB) EnsureCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	now := time.Now()
	var cart models.Cart
	err := db.Carts().FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"user_id":      userID,
			"total_amount": 0.0,
			"createdAt":    now,
			"updatedAt":    now,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&cart)
	if err != nil {
		// a concurrent upsert won the unique index race
		if translate(err) == ErrDuplicate {
			return db.CartByUser(ctx, userID)
		}
		return nil, translate(err)
	}
	return &cart, nil
}

// IncCartTotal adjusts the denormalized total in a single atomic update.
func (db *DB) IncCartTotal(ctx context.Context, cartID primitive.ObjectID, delta float64) (*models.Cart, error) {
	return updateOne[models.Cart](ctx, db.Carts(), bson.M{"_id": cartID}, bson.M{
		"$inc": bson.M{"total_amount": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (db *DB) SetCartTotal(ctx context.Context, cartID primitive.ObjectID, total float64) (*models.Cart, error) {
	return updateOne[models.Cart](ctx, db.Carts(), bson.M{"_id": cartID},
		bson.M{"$set": bson.M{"total_amount": total, "updatedAt": time.Now()}})
}

func (db *DB) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	res, err := db.CartItems().InsertOne(ctx, item)
	if err != nil {
		return translate(err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CartItemByID only finds items that belong to cartID.
func (db *DB) CartItemByID(ctx context.Context, cartID, itemID primitive.ObjectID) (*models.CartItem, error) {
	return findOne[models.CartItem](ctx, db.CartItems(), bson.M{"_id": itemID, "cart_id": cartID})
}

func (db *DB) CartItemByBook(ctx context.Context, cartID, bookID primitive.ObjectID) (*models.CartItem, error) {
	return findOne[models.CartItem](ctx, db.CartItems(), bson.M{"cart_id": cartID, "book_id": bookID})
}

func (db *DB) UpdateCartItemQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	return updateOne[models.CartItem](ctx, db.CartItems(), bson.M{"_id": itemID},
		bson.M{"$set": bson.M{"quantity": quantity, "updatedAt": time.Now()}})
}

func (db *DB) DeleteCartItem(ctx context.Context, itemID primitive.ObjectID) (*models.CartItem, error) {
	return deleteOne[models.CartItem](ctx, db.CartItems(), bson.M{"_id": itemID})
}

func (db *DB) CartItemsOf(ctx context.Context, cartID primitive.ObjectID) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, db.CartItems(), bson.M{"cart_id": cartID})
}

func (db *DB) ListCartItems(ctx context.Context, cartID primitive.ObjectID, q utils.ListQuery) ([]models.CartItem, int64, error) {
	return findPage[models.CartItem](ctx, db.CartItems(), bson.M{"cart_id": cartID}, q)
}

// ClearCart removes every item and resets the total.
func (db *DB) ClearCart(ctx context.Context, cartID primitive.ObjectID) error {
	if _, err := db.CartItems().DeleteMany(ctx, bson.M{"cart_id": cartID}); err != nil {
		return err
	}
	_, err := db.SetCartTotal(ctx, cartID, 0)
	return err
}

// RemoveBookFromCarts deletes every cart line of a book and returns the ids
// of the carts that held it.
func (db *DB) RemoveBookFromCarts(ctx context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error) {
	items, err := findAll[models.CartItem](ctx, db.CartItems(), bson.M{"book_id": bookID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if _, err := db.CartItems().DeleteMany(ctx, bson.M{"book_id": bookID}); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.CartID)
	}
	return uniqueIDs(ids), nil
}

// CartIDsWithBook returns the ids of the carts holding a line of the book.
func (db *DB) CartIDsWithBook(ctx context.Context, bookID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := db.CartItems().Distinct(ctx, "cart_id", bson.M{"book_id": bookID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
