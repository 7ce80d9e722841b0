// Package models contains the server-side domain types shared by
// repositories, services and transports.
package models

import "time"

// User is a stored account. PasswordHash is a bcrypt string and never leaves
// the server.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	IsEmailConfirmed bool      `json:"is_email_confirmed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AuthenticatedIdentity is the result of a successful credential check.
type AuthenticatedIdentity struct {
	ID string
}

// CurrentUser is the identity resolved from a valid access token.
type CurrentUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
