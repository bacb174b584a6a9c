package store

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kevinaaaquil/bookstore/utils"
)

func TestBookFilter(t *testing.T) {
	q, _ := url.ParseQuery("title=dune&literary_genre=science+fiction&minPrice=10&maxPrice=abc&$where=1&publisher=")

	f := BookFilter(q)

	assert.Equal(t, primitive.Regex{Pattern: "dune", Options: "i"}, f["title"])
	assert.Equal(t, "science fiction", f["literary_genre"])
	assert.Equal(t, bson.M{"$gte": 10.0}, f["price"])
	assert.NotContains(t, f, "$where")
	assert.NotContains(t, f, "publisher")
}

func TestBookFilter_EscapesRegex(t *testing.T) {
	f := BookFilter(url.Values{"author": {"a.*(b"}})
	assert.Equal(t, primitive.Regex{Pattern: `a\.\*\(b`, Options: "i"}, f["author"])
}

func TestBookFilter_RejectsUnknownGenre(t *testing.T) {
	f := BookFilter(url.Values{"literary_genre": {"cookbook"}})
	assert.Empty(t, f)
}

func TestUserFilter(t *testing.T) {
	f := UserFilter(url.Values{"keyword": {"ada"}, "is_active": {"false"}, "provider": {"google"}, "role": {"root"}})

	assert.Contains(t, f, "$or")
	assert.Equal(t, false, f["is_active"])
	assert.Equal(t, "google", f["provider"])
	assert.NotContains(t, f, "is_admin")
}

func TestOrderFilter(t *testing.T) {
	uid := primitive.NewObjectID()
	f := OrderFilter(uid, url.Values{"dateFrom": {"2024-01-01"}, "dateTo": {"2024-01-31"}, "status": {"shipped"}})

	assert.Equal(t, uid, f["user_id"])
	assert.Equal(t, "shipped", f["status"])
	cond, ok := f["createdAt"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cond["$gte"])
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), cond["$lte"])
}

func TestCouponFilter(t *testing.T) {
	f := CouponFilter(url.Values{"code": {"spring"}, "is_valid": {"true"}})
	assert.Equal(t, "SPRING", f["code"])
	assert.Equal(t, true, f["is_valid"])
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestSortDoc(t *testing.T) {
	q := utils.ParseListQuery(url.Values{"sort": {"price,ASC"}})
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, sortDoc(q))

	q = utils.ParseListQuery(url.Values{"sort": {"_id,ASC"}})
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, sortDoc(q))

	q = utils.ParseListQuery(url.Values{"sort": {"$natural,ASC"}})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, sortDoc(q))
}
