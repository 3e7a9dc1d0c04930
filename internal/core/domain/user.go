package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated subject handed to the vote ledger. A nil
// *Identity means nobody is signed in.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID.String(), Email: u.Email}
}
