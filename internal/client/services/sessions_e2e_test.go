package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-cli/internal/authtest"
	"github.com/orbitapp/orbit-cli/internal/client/api"
	"github.com/orbitapp/orbit-cli/internal/client/models"
	"github.com/orbitapp/orbit-cli/internal/client/session"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

// End-to-end session flows against the in-memory auth service double.

func setupE2E(t *testing.T) (Sessions, session.Store, *authtest.Server) {
	t.Helper()

	backend := authtest.NewServer()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client := api.NewClient(srv.URL, 5*time.Second, store, logging.NewNopLogger())
	return NewSessions(client, store, logging.NewNopLogger()), store, backend
}

func TestRegisterThenLogin_YieldsMatchingCurrentUser(t *testing.T) {
	svc, store, _ := setupE2E(t)
	ctx := context.Background()

	cred := models.Credential{Email: "jane@example.com", Password: "secret-pass", FullName: "Jane Doe"}

	registered, err := svc.Register(ctx, cred)
	require.NoError(t, err)
	require.Equal(t, cred.Email, registered.Email)
	require.Equal(t, cred.FullName, registered.FullName)

	require.NoError(t, svc.Login(ctx, cred.Email, cred.Password))

	token, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, cred.Email, user.Email)
	require.Equal(t, registered.ID, user.ID)
}

func TestWrongPassword_LeavesSessionLoggedOut(t *testing.T) {
	svc, store, _ := setupE2E(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.Credential{Email: "jane@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	err = svc.Login(ctx, "jane@example.com", "wrong-pass")
	require.ErrorIs(t, err, api.ErrUnauthorized)

	token, err := store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	_, err = svc.CurrentUser(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUnauthorizedMidSession_ClearsToken(t *testing.T) {
	svc, store, _ := setupE2E(t)
	ctx := context.Background()

	// A token the server never issued: the next authenticated call gets 401
	// and the transport clears the store, with no explicit logout.
	require.NoError(t, store.Set(ctx, "expired-or-forged"))

	_, err := svc.CurrentUser(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)

	token, err := store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestRegisterSucceedsButLoginFails(t *testing.T) {
	svc, store, backend := setupE2E(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.Credential{Email: "jane@example.com", Password: "secret-pass"})
	require.NoError(t, err)

	backend.SetLoginDisabled(true)

	err = svc.Login(ctx, "jane@example.com", "secret-pass")
	require.ErrorIs(t, err, api.ErrUnauthorized,
		"registration success must not be treated as authentication success")

	token, err := store.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestLoginInvalidatesPreviousUser(t *testing.T) {
	svc, _, _ := setupE2E(t)
	ctx := context.Background()

	for _, cred := range []models.Credential{
		{Email: "first@example.com", Password: "secret-pass"},
		{Email: "second@example.com", Password: "secret-pass"},
	} {
		_, err := svc.Register(ctx, cred)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Login(ctx, "first@example.com", "secret-pass"))
	user, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "first@example.com", user.Email)

	require.NoError(t, svc.Login(ctx, "second@example.com", "secret-pass"))
	user, err = svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "second@example.com", user.Email)
}

func TestLogout_ThenExpiredView(t *testing.T) {
	svc, _, _ := setupE2E(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.Credential{Email: "jane@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.Login(ctx, "jane@example.com", "secret-pass"))

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.CurrentUser(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}
