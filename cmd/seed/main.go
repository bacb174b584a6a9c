// Command seed fills an empty database with an admin, a regular user and a
// handful of books. Running it again skips whatever already exists.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/bookstore/config"
	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/store"
)

type seedUser struct {
	email, password, first, last, phone string
	admin                               bool
}

var users = []seedUser{
	{"admin@bookstore.local", "admin1234", "Ada", "Admin", "5550000001", true},
	{"reader@bookstore.local", "reader1234", "Rita", "Reader", "5550000002", false},
}

var books = []models.Book{
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", LiteraryGenre: "fantasy", Publisher: "George Allen & Unwin",
		Price: 14.99, ISBN: "9780261103344", Summary: "Bilbo Baggins is swept into a quest for a dragon's hoard.",
		PublicationDate: date(1937, 9, 21)},
	{Title: "Nineteen Eighty-Four", Author: "George Orwell", LiteraryGenre: "dystopian", Publisher: "Secker & Warburg",
		Price: 11.5, ISBN: "9780451524935", Summary: "Winston Smith works for the Party and dreams of rebellion.",
		PublicationDate: date(1949, 6, 8)},
	{Title: "Dracula", Author: "Bram Stoker", LiteraryGenre: "horror", Publisher: "Archibald Constable",
		Price: 9.25, ISBN: "9780141439846", Summary: "Jonathan Harker travels to Transylvania on business.",
		PublicationDate: date(1897, 5, 26)},
	{Title: "Pride and Prejudice", Author: "Jane Austen", LiteraryGenre: "romance", Publisher: "T. Egerton",
		Price: 8.75, ISBN: "9780141439518", Summary: "Elizabeth Bennet meets the proud Mr Darcy.",
		PublicationDate: date(1813, 1, 28)},
	{Title: "The Hound of the Baskervilles", Author: "Arthur Conan Doyle", LiteraryGenre: "mystery", Publisher: "George Newnes",
		Price: 7.99, ISBN: "9780141034324", Summary: "Holmes investigates a legendary hound on Dartmoor.",
		PublicationDate: date(1902, 4, 1)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() { _ = db.Disconnect(context.Background()) }()
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	for _, su := range users {
		if err := seedAccount(ctx, db, su); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				logger.Info("user exists, skipped", zap.String("email", su.email))
				continue
			}
			return err
		}
		logger.Info("user created", zap.String("email", su.email), zap.Bool("admin", su.admin))
	}

	for i := range books {
		b := books[i]
		if err := db.InsertBook(ctx, &b); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				logger.Info("book exists, skipped", zap.String("isbn", b.ISBN))
				continue
			}
			return err
		}
		logger.Info("book created", zap.String("title", b.Title))
	}

	n, err := db.CountBooks(ctx)
	if err != nil {
		return err
	}
	logger.Info("seed complete", zap.Int64("books", n))
	return nil
}

func seedAccount(ctx context.Context, db *store.DB, su seedUser) error {
	if _, err := db.UserByEmail(ctx, su.email); err == nil {
		return store.ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.NewUser(su.email, models.LocalIdentity{
		FirstName:    su.first,
		LastName:     su.last,
		BirthDate:    date(1990, 1, 1),
		PhoneNumber:  su.phone,
		PasswordHash: string(hash),
	}, time.Now())
	user.IsAdmin = su.admin
	if err := db.CreateUser(ctx, user); err != nil {
		return err
	}
	_, err = db.EnsureCart(ctx, user.ID)
	return err
}
