package service

import (
	"strings"

	"github.com/kevinaaaquil/bookstore/models"
)

// ExternalProfile is a user as vouched for by an external identity provider.
type ExternalProfile struct {
	Provider      models.Provider
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// Identity converts the profile into the identity a new user is created with.
func (p *ExternalProfile) Identity() models.ExternalIdentity {
	return models.ExternalIdentity{
		Kind:      p.Provider,
		Subject:   p.Subject,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

// splitName breaks a display name into first and last name on the first space.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
