package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFirebase Provider = "firebase"
)

var ValidGenders = []string{"female", "male", "other"}

// User is stored flat. Which profile fields are guaranteed depends on the
// provider; build users through NewUser so the Identity variant decides.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName    string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Email       string             `bson:"email" json:"email"`
	BirthDate   *time.Time         `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	PhoneNumber string             `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Password    string             `bson:"password,omitempty" json:"-"` // bcrypt hash, local only
	IsAdmin     bool               `bson:"is_admin" json:"is_admin"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	Provider    Provider           `bson:"provider" json:"provider"`
	ProviderID  string             `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Identity is how an account proves who it is. It is sealed: the only
// variants are LocalIdentity and ExternalIdentity.
type Identity interface {
	Provider() Provider
	apply(u *User)
}

// LocalIdentity is an email/password account. Every field is mandatory.
type LocalIdentity struct {
	FirstName    string
	LastName     string
	BirthDate    time.Time
	PhoneNumber  string
	PasswordHash string
}

func (LocalIdentity) Provider() Provider { return ProviderLocal }

func (l LocalIdentity) apply(u *User) {
	bd := l.BirthDate
	u.FirstName = l.FirstName
	u.LastName = l.LastName
	u.BirthDate = &bd
	u.PhoneNumber = l.PhoneNumber
	u.Password = l.PasswordHash
	u.Provider = ProviderLocal
	u.ProviderID = ""
}

// ExternalIdentity is an account owned by Google or Firebase. Names are
// whatever the provider shared and may be empty.
type ExternalIdentity struct {
	Kind      Provider
	Subject   string
	FirstName string
	LastName  string
}

func (e ExternalIdentity) Provider() Provider { return e.Kind }

func (e ExternalIdentity) apply(u *User) {
	u.FirstName = e.FirstName
	u.LastName = e.LastName
	u.Password = ""
	u.Provider = e.Kind
	u.ProviderID = e.Subject
}

// NewUser returns an active, non-admin user for the given identity.
func NewUser(email string, id Identity, now time.Time) *User {
	u := &User{
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id.apply(u)
	return u
}

// Identity reconstructs the variant a stored user was created with.
func (u *User) Identity() Identity {
	if u.Provider == ProviderLocal || u.Provider == "" {
		l := LocalIdentity{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PhoneNumber:  u.PhoneNumber,
			PasswordHash: u.Password,
		}
		if u.BirthDate != nil {
			l.BirthDate = *u.BirthDate
		}
		return l
	}
	return ExternalIdentity{
		Kind:      u.Provider,
		Subject:   u.ProviderID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// CanUsePassword reports whether password login applies to this account.
func (u *User) CanUsePassword() bool {
	_, ok := u.Identity().(LocalIdentity)
	return ok && u.Password != ""
}
