package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

// InsertOrder stores the order and its snapshotted lines.
func (db *DB) InsertOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	res, err := db.Orders().InsertOne(ctx, order)
	if err != nil {
		return translate(err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)

	if len(items) == 0 {
		return nil
	}
	docs := make([]any, len(items))
	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = now
		items[i].ID = primitive.NewObjectID()
		docs[i] = items[i]
	}
	if _, err := db.OrderItems().InsertMany(ctx, docs); err != nil {
		return translate(err)
	}
	order.Items = items
	return nil
}

func (db *DB) OrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return findOne[models.Order](ctx, db.Orders(), bson.M{"_id": id})
}

func (db *DB) OrderItemsOf(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	return findAll[models.OrderItem](ctx, db.OrderItems(), bson.M{"order_id": orderID})
}

func (db *DB) ListOrders(ctx context.Context, userID primitive.ObjectID, q utils.ListQuery) ([]models.Order, int64, error) {
	return findPage[models.Order](ctx, db.Orders(), OrderFilter(userID, q.Filters), q)
}

// UpdateOrderStatus only writes when the order is still in status from, so
// two admins cannot move the same order backwards concurrently.
func (db *DB) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	return updateOne[models.Order](ctx, db.Orders(), bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}})
}

func (db *DB) DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := deleteOne[models.Order](ctx, db.Orders(), bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if _, err := db.OrderItems().DeleteMany(ctx, bson.M{"order_id": id}); err != nil {
		return nil, err
	}
	return order, nil
}
