package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/kevinaaaquil/bookstore/models"
)

func TestGoogleOAuth_AuthURL(t *testing.T) {
	g := NewGoogleOAuth("client", "secret", "http://localhost:3000/auth/google/callback")
	u, err := url.Parse(g.AuthURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}

func TestGoogleOAuth_Profile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"g-1","email":"ada@example.com","verified_email":true,"given_name":"Ada","family_name":"Lovelace"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogleOAuth("client", "secret", "http://localhost/cb")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"

	p, err := g.Profile(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, p.Provider)
	assert.Equal(t, "g-1", p.Subject)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "Lovelace", p.Identity().LastName)
}

func TestSplitName(t *testing.T) {
	first, last := splitName(" Grace  Brewster Hopper ")
	assert.Equal(t, "Grace", first)
	assert.Equal(t, "Brewster Hopper", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)
}
