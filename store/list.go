package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookstore/utils"
)

// findPage runs the count and the paged find concurrently.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, q utils.ListQuery) ([]T, int64, error) {
	var (
		total int64
		items []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := coll.CountDocuments(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		opts := options.Find().
			SetSort(sortDoc(q)).
			SetSkip(int64(q.Offset)).
			SetLimit(int64(q.Size))
		cur, err := coll.Find(gctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(gctx)
		return cur.All(gctx, &items)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

// sortDoc orders by the requested field with _id as the tiebreaker.
func sortDoc(q utils.ListQuery) bson.D {
	if q.SortField == "_id" {
		return bson.D{{Key: "_id", Value: q.SortOrder()}}
	}
	return bson.D{{Key: q.SortField, Value: q.SortOrder()}, {Key: "_id", Value: q.SortOrder()}}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []T
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// updateOne applies update and returns the document after it.
func updateOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, update bson.M) (*T, error) {
	var v T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func deleteOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var v T
	if err := coll.FindOneAndDelete(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
