package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"

	MinPasswordLength = 8
)

type NotificationPreferences struct {
	OrderUpdates bool `json:"orderUpdates"`
	Reports      bool `json:"reports"`
	Credentials  bool `json:"credentials"`
}

// Profile holds the editable account settings
type Profile struct {
	Phone         string                  `json:"phone,omitempty"`
	BusinessName  string                  `json:"businessName,omitempty"`
	Address       Address                 `json:"address"`
	Timezone      string                  `json:"timezone,omitempty"`
	Notifications NotificationPreferences `json:"notifications"`
}

// User is an account holder. PasswordHash is never serialised.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) Validate() error {
	v := newValidator()

	v.required(u.Email, "email")
	checkEmail(v, u.Email, "email")
	v.required(u.Name, "name")
	if u.Profile.Timezone != "" {
		_, err := time.LoadLocation(u.Profile.Timezone)
		v.check(err == nil, "profile.timezone", "must be an IANA time zone")
	}

	return v.err()
}

// ValidatePassword checks a new plaintext password.
func ValidatePassword(password string) error {
	v := newValidator()
	v.check(len(password) >= MinPasswordLength, "password", "must be at least 8 characters")
	return v.err()
}
