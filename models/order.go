package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusOrdered       OrderStatus = "ordered"
	StatusInPreparation OrderStatus = "in preparation"
	StatusShipped       OrderStatus = "shipped"
	StatusReceived      OrderStatus = "received"
)

// OrderStatuses is the lifecycle in order.
var OrderStatuses = []OrderStatus{StatusOrdered, StatusInPreparation, StatusShipped, StatusReceived}

func (s OrderStatus) rank() int {
	for i, v := range OrderStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool { return s.rank() >= 0 }

// CanAdvanceTo reports whether next is strictly later in the lifecycle.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

type Order struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CouponID    *primitive.ObjectID `bson:"coupon_id" json:"coupon_id"`
	Subtotal    float64             `bson:"subtotal" json:"subtotal"`
	TotalAmount float64             `bson:"total_amount" json:"total_amount"`
	Status      OrderStatus         `bson:"status" json:"status"`
	Items       []OrderItem         `bson:"-" json:"items,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem is a line snapshotted at checkout.
type OrderItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    primitive.ObjectID `bson:"order_id" json:"order_id"`
	BookID     primitive.ObjectID `bson:"book_id" json:"book_id"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	ItemAmount float64            `bson:"item_amount" json:"item_amount"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
