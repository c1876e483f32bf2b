// Package session persists the bearer token that represents the client's
// authenticated session. The store is the sole source of truth for
// "is a user logged in" on the client side: an absent token is the only
// logged-out signal, and no expiry is tracked locally.
package session

import "context"

// TokenKey is the single well-known key the access token lives under.
const TokenKey = "access_token"

// Store persists the bearer token across process restarts.
//
// Contract:
//   - Get returns "" when no token has been set.
//   - Set overwrites the stored token without validating its shape.
//   - Clear is idempotent: clearing an absent token is not an error.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
