package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

// UserUpdate carries the profile fields a user may change; nil means unchanged.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Address     *string
	PhoneNumber *string
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		return translate(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), bson.M{"_id": id})
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), bson.M{"email": email})
}

func (db *DB) UserByProvider(ctx context.Context, provider models.Provider, providerID string) (*models.User, error) {
	return findOne[models.User](ctx, db.Users(), bson.M{"provider": provider, "provider_id": providerID})
}

// UsersByIDs returns the users found, keyed by id. Missing ids are skipped.
func (db *DB) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := findAll[models.User](ctx, db.Users(), bson.M{"_id": bson.M{"$in": uniqueIDs(ids)}})
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (db *DB) ListUsers(ctx context.Context, q utils.ListQuery) ([]models.User, int64, error) {
	return findPage[models.User](ctx, db.Users(), UserFilter(q.Filters), q)
}

func (db *DB) UpdateUser(ctx context.Context, id primitive.ObjectID, u UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.FirstName != nil {
		set["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		set["last_name"] = *u.LastName
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.PhoneNumber != nil {
		set["phone_number"] = *u.PhoneNumber
	}
	return updateOne[models.User](ctx, db.Users(), bson.M{"_id": id}, bson.M{"$set": set})
}

// GrantAdmin returns ErrDuplicate when the user already is an admin.
func (db *DB) GrantAdmin(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := updateOne[models.User](ctx, db.Users(),
		bson.M{"_id": id, "is_admin": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"is_admin": true, "updatedAt": time.Now()}})
	if err == ErrNotFound {
		if _, lookupErr := db.UserByID(ctx, id); lookupErr == nil {
			return nil, ErrDuplicate
		}
	}
	return user, err
}

func (db *DB) DeactivateUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return updateOne[models.User](ctx, db.Users(), bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updatedAt": time.Now()}})
}

// DeleteNonAdminUsers is the bulk reset. Admin accounts survive.
func (db *DB) DeleteNonAdminUsers(ctx context.Context) (int64, error) {
	res, err := db.Users().DeleteMany(ctx, bson.M{"is_admin": bson.M{"$ne": true}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
