package store

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookstore/models"
)

// A predicate turns one raw filter value into bson conditions. ok=false means
// the value is malformed and the filter is skipped.
type predicate func(value string, into bson.M) (ok bool)

// filterSet is the allow-list of filters one resource understands. Unknown
// keys are ignored and never reach the query.
type filterSet map[string]predicate

func (fs filterSet) build(values url.Values, base bson.M) bson.M {
	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}
	for key, pred := range fs {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		pred(raw, filter)
	}
	return filter
}

func containsFold(field string) predicate {
	return func(v string, into bson.M) bool {
		into[field] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
		return true
	}
}

func oneOf(field string, allowed func(string) bool) predicate {
	return func(v string, into bson.M) bool {
		if !allowed(v) {
			return false
		}
		into[field] = v
		return true
	}
}

func boolean(field string) predicate {
	return func(v string, into bson.M) bool {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false
		}
		into[field] = b
		return true
	}
}

func rangeBound(field, op string, parse func(string) (any, bool)) predicate {
	return func(v string, into bson.M) bool {
		val, ok := parse(v)
		if !ok {
			return false
		}
		cond, _ := into[field].(bson.M)
		if cond == nil {
			cond = bson.M{}
		}
		cond[op] = val
		into[field] = cond
		return true
	}
}

func parseFloat(v string) (any, bool) {
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(v string) (any, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return nil, false
}

// parseDateEnd extends a plain date to the end of that day.
func parseDateEnd(v string) (any, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond), true
	}
	return nil, false
}

var bookFilters = filterSet{
	"title":          containsFold("title"),
	"author":         containsFold("author"),
	"publisher":      containsFold("publisher"),
	"literary_genre": oneOf("literary_genre", models.ValidGenre),
	"minPrice":       rangeBound("price", "$gte", parseFloat),
	"maxPrice":       rangeBound("price", "$lte", parseFloat),
}

var userFilters = filterSet{
	"keyword": func(v string, into bson.M) bool {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
		into["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
		}
		return true
	},
	"is_active": boolean("is_active"),
	"is_admin":  boolean("is_admin"),
	"role": func(v string, into bson.M) bool {
		switch v {
		case "admin":
			into["is_admin"] = true
		case "user":
			into["is_admin"] = false
		default:
			return false
		}
		return true
	},
	"provider": oneOf("provider", func(v string) bool {
		switch models.Provider(v) {
		case models.ProviderLocal, models.ProviderGoogle, models.ProviderFirebase:
			return true
		}
		return false
	}),
}

var orderFilters = filterSet{
	"dateFrom": rangeBound("createdAt", "$gte", parseDate),
	"dateTo":   rangeBound("createdAt", "$lte", parseDateEnd),
	"status": oneOf("status", func(v string) bool {
		return models.OrderStatus(v).Valid()
	}),
}

var couponFilters = filterSet{
	"is_valid": boolean("is_valid"),
	"code": func(v string, into bson.M) bool {
		into["code"] = strings.ToUpper(v)
		return true
	},
}

// The builders below turn list filters into query documents.
func BookFilter(values url.Values) bson.M   { return bookFilters.build(values, nil) }
func UserFilter(values url.Values) bson.M   { return userFilters.build(values, nil) }
func CouponFilter(values url.Values) bson.M { return couponFilters.build(values, nil) }

func OrderFilter(userID primitive.ObjectID, values url.Values) bson.M {
	return orderFilters.build(values, bson.M{"user_id": userID})
}
