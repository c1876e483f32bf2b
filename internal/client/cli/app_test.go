package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-cli/internal/client/api"
	"github.com/orbitapp/orbit-cli/internal/client/guard"
	"github.com/orbitapp/orbit-cli/internal/client/models"
	"github.com/orbitapp/orbit-cli/internal/client/services"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

// ---- stub session service ----

type stubSessions struct {
	token  bool
	cached bool
	user   *models.User

	registerRet *models.User
	registerErr error
	loginErr    error

	registerCalls int
	loginCalls    int
	logoutCalls   int
}

func (s *stubSessions) Register(ctx context.Context, cred models.Credential) (*models.User, error) {
	s.registerCalls++
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.registerRet, nil
}

func (s *stubSessions) Login(ctx context.Context, email, password string) error {
	s.loginCalls++
	if s.loginErr != nil {
		return s.loginErr
	}
	s.token = true
	s.cached = true
	return nil
}

func (s *stubSessions) Logout(ctx context.Context) error {
	s.logoutCalls++
	s.token = false
	s.cached = false
	s.user = nil
	return nil
}

func (s *stubSessions) CurrentUser(ctx context.Context) (*models.User, error) {
	if !s.token {
		return nil, services.ErrNotAuthenticated
	}
	if s.user == nil {
		return nil, &api.Error{Status: 401}
	}
	return s.user, nil
}

func (s *stubSessions) HasToken(ctx context.Context) (bool, error) { return s.token, nil }
func (s *stubSessions) HasCachedUser() bool                        { return s.cached }

// ---- helpers ----

func newTestApp(t *testing.T, sess services.Sessions, input string) (*App, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	a := &App{
		sessions: sess,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
		log:      logging.NewNopLogger(),
	}
	a.requireAuth = guard.RequireAuth(sess)
	a.requireAuth.OnChecking = func() { fmt.Fprintln(out, "Checking session...") }
	a.guestOnly = guard.GuestOnly(sess)
	return a, out
}

func stubPassword(t *testing.T, password string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return password, nil }
	t.Cleanup(func() { getPassword = orig })
}

func authedUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "jane@example.com", FullName: "Jane Doe"}
}

// ---- tests ----

func TestOpenDashboard_ColdStartRedirectsToLogin(t *testing.T) {
	stubPassword(t, "whatever")
	sess := &stubSessions{loginErr: &api.Error{Status: 401, Detail: "Incorrect email or password"}}
	a, out := newTestApp(t, sess, "jane@example.com\n")

	require.NoError(t, a.OpenDashboard(context.Background()))

	output := out.String()
	require.Contains(t, output, "Redirecting to login.")
	require.Contains(t, output, "-- Log in --")
	require.Contains(t, output, "Incorrect email or password.")
	require.NotContains(t, output, "-- Dashboard --")
}

func TestOpenDashboard_RendersProfile(t *testing.T) {
	sess := &stubSessions{token: true, user: authedUser()}
	a, out := newTestApp(t, sess, "")

	require.NoError(t, a.OpenDashboard(context.Background()))

	output := out.String()
	require.Contains(t, output, "Checking session...")
	require.Contains(t, output, "-- Dashboard --")
	require.Contains(t, output, "jane@example.com")
}

func TestOpenDashboard_WarmCacheSkipsCheckingNotice(t *testing.T) {
	sess := &stubSessions{token: true, cached: true, user: authedUser()}
	a, out := newTestApp(t, sess, "")

	require.NoError(t, a.OpenDashboard(context.Background()))
	require.NotContains(t, out.String(), "Checking session...")
}

func TestOpenLogin_AuthenticatedRedirectsToDashboard(t *testing.T) {
	sess := &stubSessions{token: true, user: authedUser()}
	a, out := newTestApp(t, sess, "")

	require.NoError(t, a.OpenLogin(context.Background()))

	output := out.String()
	require.Contains(t, output, "-- Dashboard --")
	require.NotContains(t, output, "-- Log in --")
}

func TestLoginForm_SuccessContinuesToDashboard(t *testing.T) {
	stubPassword(t, "secret-pass")
	sess := &stubSessions{user: authedUser()}
	a, out := newTestApp(t, sess, "jane@example.com\n")

	require.NoError(t, a.OpenLogin(context.Background()))

	output := out.String()
	require.Contains(t, output, "Logged in.")
	require.Contains(t, output, "-- Dashboard --")
	require.Equal(t, 1, sess.loginCalls)
}

func TestRegister_AutologinFailureRoutesToLoginView(t *testing.T) {
	stubPassword(t, "secret-pass")
	sess := &stubSessions{
		registerRet: authedUser(),
		loginErr:    &api.Error{Status: 401, Detail: "Incorrect email or password"},
	}
	// Register view reads email + full name, then the login view reads email.
	a, out := newTestApp(t, sess, "jane@example.com\nJane Doe\njane@example.com\n")

	require.NoError(t, a.OpenRegister(context.Background()))

	output := out.String()
	require.Contains(t, output, "Account created.")
	require.Contains(t, output, "Automatic login failed:")
	require.Contains(t, output, "-- Log in --")
	require.NotContains(t, output, "-- Dashboard --",
		"registration success must never be rendered as authentication success")
	require.Equal(t, 1, sess.registerCalls)
}

func TestRegister_ValidationErrorIsShownPerField(t *testing.T) {
	stubPassword(t, "x")
	sess := &stubSessions{registerErr: &api.Error{Status: 422, Fields: []api.FieldError{
		{Loc: []any{"body", "password"}, Msg: "ensure this value has at least 8 characters"},
	}}}
	a, out := newTestApp(t, sess, "jane@example.com\n\n")

	require.NoError(t, a.OpenRegister(context.Background()))
	require.Contains(t, out.String(), "password: ensure this value has at least 8 characters")
}

func TestLogout_ReportsAndClears(t *testing.T) {
	sess := &stubSessions{token: true, cached: true, user: authedUser()}
	a, out := newTestApp(t, sess, "")

	require.NoError(t, a.Logout(context.Background()))
	require.NoError(t, a.Logout(context.Background()))

	require.Contains(t, out.String(), "Logged out.")
	require.Equal(t, 2, sess.logoutCalls)
	require.False(t, sess.token)
}

func TestStatus_ShowsCachedUserOnly(t *testing.T) {
	sess := &stubSessions{token: true, user: authedUser()}
	a, _ := newTestApp(t, sess, "")
	ctx := context.Background()

	require.Empty(t, a.status(ctx), "the prompt must not trigger a network fetch")

	sess.cached = true
	require.Equal(t, "(jane@example.com) ", a.status(ctx))
}
