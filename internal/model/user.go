package model

import "time"

// User is an account mirrored from the auth service. This backend never
// writes users; registration and login live elsewhere.
type User struct {
	ID        int64      `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	IsAdmin   bool       `json:"is_admin" db:"is_admin"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty" db:"last_login"`
}
