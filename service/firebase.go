package service

import (
	"context"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/kevinaaaquil/bookstore/models"
)

var ErrFirebaseTokenInvalid = errors.New("firebase id token invalid")

type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize firebase app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get firebase auth client")
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks a client-side Firebase ID token and returns who it belongs to.
// Email is empty for accounts without one.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*ExternalProfile, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(ErrFirebaseTokenInvalid, err.Error())
	}
	return firebaseProfile(token.UID, token.Claims), nil
}

func firebaseProfile(uid string, claims map[string]interface{}) *ExternalProfile {
	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)
	name, _ := claims["name"].(string)
	first, last := splitName(name)
	return &ExternalProfile{
		Provider:      models.ProviderFirebase,
		Subject:       uid,
		Email:         strings.ToLower(strings.TrimSpace(email)),
		EmailVerified: verified,
		FirstName:     first,
		LastName:      last,
	}
}
