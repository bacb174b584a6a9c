package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
	"github.com/kevinaaaquil/bookstore/utils"
)

type CouponUpdate struct {
	Code         *string
	DiscountRate *float64
	StartAt      *time.Time
	EndAt        *time.Time
	IsValid      *bool
}

func (db *DB) InsertCoupon(ctx context.Context, c *models.Coupon) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := db.Coupons().InsertOne(ctx, c)
	if err != nil {
		return translate(err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (db *DB) CouponByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	return findOne[models.Coupon](ctx, db.Coupons(), bson.M{"_id": id})
}

func (db *DB) ListCoupons(ctx context.Context, q utils.ListQuery) ([]models.Coupon, int64, error) {
	return findPage[models.Coupon](ctx, db.Coupons(), CouponFilter(q.Filters), q)
}

func (db *DB) UpdateCoupon(ctx context.Context, id primitive.ObjectID, u CouponUpdate) (*models.Coupon, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.Code != nil {
		set["code"] = *u.Code
	}
	if u.DiscountRate != nil {
		set["discount_rate"] = *u.DiscountRate
	}
	if u.StartAt != nil {
		set["start_at"] = *u.StartAt
	}
	if u.EndAt != nil {
		set["end_at"] = *u.EndAt
	}
	if u.IsValid != nil {
		set["is_valid"] = *u.IsValid
	}
	return updateOne[models.Coupon](ctx, db.Coupons(), bson.M{"_id": id}, bson.M{"$set": set})
}

func (db *DB) DeleteCoupon(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	return deleteOne[models.Coupon](ctx, db.Coupons(), bson.M{"_id": id})
}
