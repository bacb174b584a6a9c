package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var Genres = []string{
	"fantasy",
	"horror",
	"mystery",
	"romance",
	"science fiction",
	"dystopian",
	"biography",
	"drama",
	"fable",
	"poetry",
	"historical",
}

func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author" json:"author"`
	LiteraryGenre   string             `bson:"literary_genre" json:"literary_genre"`
	PublicationDate time.Time          `bson:"publication_date" json:"publication_date"`
	Publisher       string             `bson:"publisher" json:"publisher"`
	Price           float64            `bson:"price" json:"price"`
	ISBN            string             `bson:"isbn" json:"isbn"`
	Summary         string             `bson:"summary" json:"summary"`
	CoverKey        string             `bson:"cover_key,omitempty" json:"-"` // object key in S3
	HasCover        bool               `bson:"-" json:"has_cover"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
