package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Carts() *mongo.Collection {
	return db.Database.Collection("carts")
}

func (db *DB) CartItems() *mongo.Collection {
	return db.Database.Collection("cartitems")
}

func (db *DB) Orders() *mongo.Collection {
	return db.Database.Collection("orders")
}

func (db *DB) OrderItems() *mongo.Collection {
	return db.Database.Collection("orderitems")
}

func (db *DB) Coupons() *mongo.Collection {
	return db.Database.Collection("coupons")
}

func (db *DB) Reviews() *mongo.Collection {
	return db.Database.Collection("reviews")
}

func (db *DB) Comments() *mongo.Collection {
	return db.Database.Collection("comments")
}

func (db *DB) Favorites() *mongo.Collection {
	return db.Database.Collection("favorites")
}

// Ping is used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
