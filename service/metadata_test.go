package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISBNLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "isbn:9780441013593":
			_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{
				"title":"Dune","authors":["Frank Herbert"],"publisher":"Ace",
				"publishedDate":"2005-08","description":" Spice. ",
				"categories":["Fiction"],
				"industryIdentifiers":[{"type":"ISBN_10","identifier":"0441013597"},{"type":"ISBN_13","identifier":"9780441013593"}]
			}}]}`))
		case "isbn:0000000000":
			_, _ = w.Write([]byte(`{"totalItems":0}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()
	l := NewISBNLookup(srv.URL)
	ctx := context.Background()

	draft, err := l.Lookup(ctx, "978-0-441-01359-3")
	require.NoError(t, err)
	assert.Equal(t, "Dune", draft.Title)
	assert.Equal(t, "Frank Herbert", draft.Author)
	assert.Equal(t, "9780441013593", draft.ISBN)
	assert.Equal(t, "Spice.", draft.Summary)
	assert.Equal(t, "fiction", draft.Category)
	assert.Equal(t, "2005-08-01T00:00:00Z", draft.PublicationDate)
	assert.Contains(t, draft.CoverURL, "9780441013593-L.jpg")

	_, err = l.Lookup(ctx, "0000000000")
	assert.True(t, errors.Is(err, ErrISBNNotFound))

	_, err = l.Lookup(ctx, "123")
	assert.True(t, errors.Is(err, ErrInvalidISBN))
	assert.False(t, errors.Is(err, ErrISBNNotFound))

	_, err = l.Lookup(ctx, "  ")
	assert.Error(t, err)
}
