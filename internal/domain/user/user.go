package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	EmailAddress string    `json:"emailAddress"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

// Profile is what the authenticated caller sees about themselves.
type Profile struct {
	FirstName string `json:"First name"`
	LastName  string `json:"Last name"`
	Username  string `json:"Username"`
}

func (u User) Profile() Profile {
	return Profile{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.EmailAddress,
	}
}
