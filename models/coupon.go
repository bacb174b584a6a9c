package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy    primitive.ObjectID `bson:"created_by" json:"created_by"`
	Code         string             `bson:"code" json:"code"`
	DiscountRate float64            `bson:"discount_rate" json:"discount_rate"`
	StartAt      time.Time          `bson:"start_at" json:"start_at"`
	EndAt        time.Time          `bson:"end_at" json:"end_at"`
	IsValid      bool               `bson:"is_valid" json:"is_valid"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Applicable reports whether the coupon can be redeemed at t.
func (c *Coupon) Applicable(t time.Time) bool {
	return c.IsValid && !t.Before(c.StartAt) && t.Before(c.EndAt)
}

// Apply returns amount after the discount, rounded to cents.
func (c *Coupon) Apply(amount float64) float64 {
	return RoundCents(amount * (1 - c.DiscountRate/100))
}

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
