package user

import "time"

// NewFromCreateRequest builds an unsaved user. The caller hashes the password.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
