package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_LocalIdentity(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	birth := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)

	u := NewUser("ada@example.com", LocalIdentity{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		BirthDate:    birth,
		PhoneNumber:  "0612345678",
		PasswordHash: "hash",
	}, now)

	assert.Equal(t, ProviderLocal, u.Provider)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	require.NotNil(t, u.BirthDate)
	assert.Equal(t, birth, *u.BirthDate)
	assert.True(t, u.CanUsePassword())

	id, ok := u.Identity().(LocalIdentity)
	require.True(t, ok)
	assert.Equal(t, "0612345678", id.PhoneNumber)
}

func TestNewUser_ExternalIdentity(t *testing.T) {
	u := NewUser("g@example.com", ExternalIdentity{Kind: ProviderGoogle, Subject: "g-123"}, time.Now())

	assert.Equal(t, ProviderGoogle, u.Provider)
	assert.Equal(t, "g-123", u.ProviderID)
	assert.Empty(t, u.Password)
	assert.Nil(t, u.BirthDate)
	assert.False(t, u.CanUsePassword())

	id, ok := u.Identity().(ExternalIdentity)
	require.True(t, ok)
	assert.Equal(t, ProviderGoogle, id.Provider())
}

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	assert.True(t, StatusOrdered.CanAdvanceTo(StatusInPreparation))
	assert.True(t, StatusOrdered.CanAdvanceTo(StatusReceived))
	assert.False(t, StatusShipped.CanAdvanceTo(StatusOrdered))
	assert.False(t, StatusShipped.CanAdvanceTo(StatusShipped))
	assert.False(t, OrderStatus("lost").CanAdvanceTo(StatusShipped))
	assert.False(t, StatusOrdered.CanAdvanceTo("lost"))
}

func TestCoupon_ApplicableAndApply(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Coupon{DiscountRate: 15, StartAt: start, EndAt: start.Add(48 * time.Hour), IsValid: true}

	assert.True(t, c.Applicable(start))
	assert.True(t, c.Applicable(start.Add(time.Hour)))
	assert.False(t, c.Applicable(start.Add(-time.Second)))
	assert.False(t, c.Applicable(start.Add(48*time.Hour)))

	c.IsValid = false
	assert.False(t, c.Applicable(start.Add(time.Hour)))

	assert.Equal(t, 85.0, c.Apply(100))
	assert.Equal(t, 16.99, c.Apply(19.99))
}

func TestValidGenre(t *testing.T) {
	assert.True(t, ValidGenre("science fiction"))
	assert.False(t, ValidGenre("cookbook"))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: `"2024-02-29"`, want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{in: `"2024-02-29T10:30:00Z"`, want: time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)},
		{in: `"2024-02-29T12:30:00+02:00"`, want: time.Date(2024, 2, 29, 10, 30, 0, 0, time.UTC)},
		{in: `null`},
		{in: `"29/02/2024"`, wantErr: true},
	}
	for _, tt := range tests {
		var d Date
		err := d.UnmarshalJSON([]byte(tt.in))
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(d.Time), tt.in)
	}
}
