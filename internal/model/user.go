package model

import "time"

// User is the admin account. Exactly one row is expected.
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Do not expose password hash in JSON responses
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is what login hands back to the client.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// Session is the server-held proof of authentication referenced by the cookie.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
