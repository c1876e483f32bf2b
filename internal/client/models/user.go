// Package models defines the session-related types exchanged with the Orbit
// backend.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential carries registration/login input. It is transient: built for a
// single call and never persisted.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// User is the authenticated user's profile as returned by the backend.
// It is derived state: fetched with the current token and cached, never
// mutated locally.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Token is the login response: an opaque bearer token plus its type
// (always "bearer" for this backend).
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
