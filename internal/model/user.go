// Package model defines domain entities for the application.
package model

import "time"

// AccessAuth is the access level granted to session tokens issued on
// registration and login. It is the only access level the API understands.
const AccessAuth = "auth"

// AuthToken is one entry in a user's session token registry.
// A signed token is accepted only while its exact string is present here
// with access "auth"; removing the entry revokes the session regardless of
// the token's cryptographic validity.
type AuthToken struct {
	ID        string    `json:"-"`
	Access    string    `json:"access"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"-"`
}

// User represents an account that owns todos and sessions.
// PasswordHash never leaves the API; the token registry lives in its own
// table and is queried through the repository, not carried on the struct.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
