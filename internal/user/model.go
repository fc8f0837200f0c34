package user

import (
	"time"
)

// User is an immutable snapshot of an identity record. Mutations go through
// Repository methods, which return fresh snapshots.
type User struct {
	ID           int64     `json:"id"`
	Email        *string   `json:"email"`
	MobileNumber *string   `json:"mobile_number"`
	FullName     *string   `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identifier returns the login handle the account was created with.
func (u *User) Identifier() string {
	if u.Email != nil {
		return *u.Email
	}
	if u.MobileNumber != nil {
		return *u.MobileNumber
	}
	return ""
}
