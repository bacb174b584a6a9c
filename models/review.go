package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	BookID    primitive.ObjectID `bson:"book_id" json:"book_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comments  []Comment          `bson:"-" json:"comments"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ReviewID  primitive.ObjectID `bson:"review_id" json:"review_id"`
	Comment   string             `bson:"comment" json:"comment"`
	User      *Author            `bson:"-" json:"user,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Author is the public projection of a user shown next to their comments.
type Author struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"first_name,omitempty"`
	LastName  string             `json:"last_name,omitempty"`
}

func AuthorOf(u *User) *Author {
	return &Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	BookID    primitive.ObjectID `bson:"book_id" json:"book_id"`
	Book      *Book              `bson:"-" json:"book,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
