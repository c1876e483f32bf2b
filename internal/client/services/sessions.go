// Package services contains the application services of the Orbit client.
// This file defines the session service: the single source of truth for what
// the client currently believes about the authenticated session.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbitapp/orbit-cli/internal/client/api"
	"github.com/orbitapp/orbit-cli/internal/client/cache"
	"github.com/orbitapp/orbit-cli/internal/client/models"
	"github.com/orbitapp/orbit-cli/internal/client/session"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

// ErrNotAuthenticated is returned by CurrentUser when no token is stored.
// No request is issued in that state.
var ErrNotAuthenticated = errors.New("not authenticated")

// currentUserKey names the cached current-user query.
const currentUserKey = "session/current_user"

// Sessions exposes session operations as cached, deduplicated calls.
//
// Contract:
//   - Register creates an account and never stores a token; registration and
//     authentication stay decoupled so callers chain them explicitly.
//   - Login persists the returned token, then invalidates the cached
//     current-user query. On failure the token state is left untouched here
//     (the transport's 401 handling is a separate concern).
//   - Logout clears the stored token and purges the whole query cache.
//   - CurrentUser requires a stored token; results are cached and concurrent
//     fetches deduplicated. Failures are neither cached nor retried.
type Sessions interface {
	Register(ctx context.Context, cred models.Credential) (*models.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)

	// HasToken reports whether a token is currently stored.
	HasToken(ctx context.Context) (bool, error)
	// HasCachedUser reports whether CurrentUser can answer without a request.
	HasCachedUser() bool
}

type sessions struct {
	api   api.AuthAPI
	store session.Store
	cache *cache.Cache
	log   logging.Logger
}

// NewSessions constructs a Sessions bound to the given API client and store.
func NewSessions(apiClient api.AuthAPI, store session.Store, log logging.Logger) Sessions {
	return &sessions{
		api:   apiClient,
		store: store,
		cache: cache.New(),
		log:   log,
	}
}

func (s *sessions) Register(ctx context.Context, cred models.Credential) (*models.User, error) {
	user, err := s.api.Register(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	s.log.Info(ctx, "registered new account", "email", user.Email)
	return user, nil
}

func (s *sessions) Login(ctx context.Context, email, password string) error {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := s.store.Set(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	// Invalidate only after the token is persisted, so the next current-user
	// read can never observe a user belonging to a previous token.
	s.cache.Invalidate(currentUserKey)

	s.log.Info(ctx, "logged in", "email", email)
	return nil
}

func (s *sessions) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	// Purge everything, not just the current-user entry: once domain queries
	// (projects, tasks) live here too, they must not leak between accounts.
	s.cache.Purge()

	s.log.Info(ctx, "logged out")
	return nil
}

func (s *sessions) CurrentUser(ctx context.Context) (*models.User, error) {
	token, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	v, err := s.cache.GetOrFetch(ctx, currentUserKey, func(ctx context.Context) (any, error) {
		return s.api.Me(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

func (s *sessions) HasToken(ctx context.Context) (bool, error) {
	token, err := s.store.Get(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func (s *sessions) HasCachedUser() bool {
	_, ok := s.cache.Peek(currentUserKey)
	return ok
}
