package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

type BookUpdate struct {
	Title           *string
	Author          *string
	LiteraryGenre   *string
	PublicationDate *time.Time
	Publisher       *string
	Price           *float64
	ISBN            *string
	Summary         *string
}

func (db *DB) InsertBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	book.CreatedAt, book.UpdatedAt = now, now
	res, err := db.Books().InsertOne(ctx, book)
	if err != nil {
		return translate(err)
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return findOne[models.Book](ctx, db.Books(), bson.M{"_id": id})
}

func (db *DB) BooksByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Book, error) {
	out := make(map[primitive.ObjectID]*models.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	books, err := findAll[models.Book](ctx, db.Books(), bson.M{"_id": bson.M{"$in": uniqueIDs(ids)}})
	if err != nil {
		return nil, err
	}
	for i := range books {
		out[books[i].ID] = &books[i]
	}
	return out, nil
}

func (db *DB) ListBooks(ctx context.Context, q utils.ListQuery) ([]models.Book, int64, error) {
	return findPage[models.Book](ctx, db.Books(), BookFilter(q.Filters), q)
}

func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, u BookUpdate) (*models.Book, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Author != nil {
		set["author"] = *u.Author
	}
	if u.LiteraryGenre != nil {
		set["literary_genre"] = *u.LiteraryGenre
	}
	if u.PublicationDate != nil {
		set["publication_date"] = *u.PublicationDate
	}
	if u.Publisher != nil {
		set["publisher"] = *u.Publisher
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.ISBN != nil {
		set["isbn"] = *u.ISBN
	}
	if u.Summary != nil {
		set["summary"] = *u.Summary
	}
	return updateOne[models.Book](ctx, db.Books(), bson.M{"_id": id}, bson.M{"$set": set})
}

func (db *DB) SetBookCover(ctx context.Context, id primitive.ObjectID, key string) (*models.Book, error) {
	return updateOne[models.Book](ctx, db.Books(), bson.M{"_id": id},
		bson.M{"$set": bson.M{"cover_key": key, "updatedAt": time.Now()}})
}

// DeleteBook removes a book and returns it so callers can clean up its cover.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return deleteOne[models.Book](ctx, db.Books(), bson.M{"_id": id})
}

// CountBooks is used by the seeder.
func (db *DB) CountBooks(ctx context.Context) (int64, error) {
	return db.Books().CountDocuments(ctx, bson.M{})
}
