package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	PhoneNumber       string    `json:"phone_number"`
	Location          string    `json:"location"`
	PreferredLanguage string    `json:"preferred_language"`
	Verified          bool      `json:"verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
