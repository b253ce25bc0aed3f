package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/api"
	"spendwise/internal/core"
)

type fakeAuth struct {
	session  *Session
	valid    map[string]core.User
	loginErr error
	result   api.AuthResult
	meErr    error
	meCalls  int
	seenTok  string
}

func (f *fakeAuth) Register(_ context.Context, req api.RegisterRequest) (api.AuthResult, error) {
	if req.Password != req.ConfirmPassword {
		return api.AuthResult{}, &api.Error{Kind: api.KindValidation, StatusCode: http.StatusBadRequest, Message: "Passwords do not match"}
	}
	return f.result, f.loginErr
}

func (f *fakeAuth) Login(context.Context, api.LoginRequest) (api.AuthResult, error) {
	if f.loginErr != nil {
		return api.AuthResult{}, f.loginErr
	}
	return f.result, nil
}

func (f *fakeAuth) CurrentUser(context.Context) (core.User, error) {
	f.meCalls++
	f.seenTok = f.session.Token()
	if f.meErr != nil {
		return core.User{}, f.meErr
	}
	u, ok := f.valid[f.seenTok]
	if !ok {
		return core.User{}, &api.Error{Kind: api.KindAuth, StatusCode: http.StatusUnauthorized, Message: "Token is not valid"}
	}
	return u, nil
}

func setup(stored string) (*Store, *fakeAuth, *MemoryTokens) {
	s := New()
	auth := &fakeAuth{session: s, valid: map[string]core.User{"good": {ID: "u1", Name: "Asha"}}}
	tokens := &MemoryTokens{}
	_ = tokens.Save(context.Background(), stored)
	return NewStore(s, auth, tokens, nil), auth, tokens
}

func TestInitialStateIsUnknown(t *testing.T) {
	st, _, _ := setup("")
	assert.Equal(t, Unknown, st.State())
	assert.Equal(t, "unknown", st.State().String())
}

func TestRestoreWithoutTokenMakesNoCall(t *testing.T) {
	st, auth, tokens := setup("")
	require.NoError(t, st.Restore(context.Background()))

	assert.Equal(t, Unauthenticated, st.State())
	assert.Zero(t, auth.meCalls)
	assert.Equal(t, 1, tokens.Loads)
}

func TestRestoreWithInvalidTokenClearsIt(t *testing.T) {
	st, auth, tokens := setup("stale")
	require.NoError(t, st.Restore(context.Background()))

	assert.Equal(t, Unauthenticated, st.State())
	assert.Equal(t, 1, auth.meCalls)
	assert.Equal(t, "stale", auth.seenTok)
	assert.Empty(t, tokens.Stored())
	assert.Empty(t, st.Session().Token())
}

func TestRestoreWithNetworkFailureClearsToken(t *testing.T) {
	st, auth, tokens := setup("good")
	auth.meErr = &api.Error{Kind: api.KindNetwork, Err: errors.New("connection refused")}
	require.NoError(t, st.Restore(context.Background()))
	assert.Equal(t, Unauthenticated, st.State())
	assert.Empty(t, tokens.Stored())
}

func TestRestoreWithValidToken(t *testing.T) {
	st, _, tokens := setup("good")
	require.NoError(t, st.Restore(context.Background()))

	assert.Equal(t, Authenticated, st.State())
	assert.Equal(t, "u1", st.Session().User().ID)
	assert.Equal(t, "good", st.Session().Token())
	assert.Equal(t, "good", tokens.Stored())
}

func TestLoginSuccessPersists(t *testing.T) {
	st, auth, tokens := setup("")
	require.NoError(t, st.Restore(context.Background()))
	auth.result = api.AuthResult{Token: "fresh", User: core.User{ID: "u2"}}

	u, err := st.Login(context.Background(), " a@x.io ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, Authenticated, st.State())
	assert.Equal(t, "fresh", tokens.Stored())
	assert.Equal(t, "fresh", st.Session().Token())
}

func TestLoginFailureKeepsExistingSession(t *testing.T) {
	st, auth, tokens := setup("good")
	require.NoError(t, st.Restore(context.Background()))
	auth.loginErr = &api.Error{Kind: api.KindValidation, StatusCode: http.StatusBadRequest, Message: "Invalid credentials"}

	_, err := st.Login(context.Background(), "a@x.io", "bad")
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, "Invalid credentials", api.UserMessage(err))

	assert.Equal(t, Authenticated, st.State())
	assert.Equal(t, "good", st.Session().Token())
	assert.Equal(t, "good", tokens.Stored())
}

func TestLoginFailureFallbackMessage(t *testing.T) {
	st, auth, _ := setup("")
	auth.loginErr = &api.Error{Kind: api.KindServer, StatusCode: http.StatusInternalServerError}

	_, err := st.Login(context.Background(), "a@x.io", "pw")
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, "Login failed", api.UserMessage(err))

	auth.loginErr = &api.Error{Kind: api.KindNetwork, Err: errors.New("dial")}
	_, err = st.Login(context.Background(), "a@x.io", "pw")
	assert.ErrorIs(t, err, api.ErrNetwork)
}

func TestRegister(t *testing.T) {
	st, auth, tokens := setup("")
	auth.result = api.AuthResult{Token: "new", User: core.User{ID: "u3", Name: "Ben"}}

	_, err := st.Register(context.Background(), "Ben", "b@x.io", "pw", "other")
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, "Passwords do not match", api.UserMessage(err))
	assert.Empty(t, tokens.Stored())

	auth.loginErr = &api.Error{Kind: api.KindServer}
	_, err = st.Register(context.Background(), "Ben", "b@x.io", "pw", "pw")
	assert.Equal(t, "Registration failed", api.UserMessage(err))

	auth.loginErr = nil
	u, err := st.Register(context.Background(), "Ben", "b@x.io", "pw", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ben", u.Name)
	assert.Equal(t, Authenticated, st.State())
	assert.Equal(t, "new", tokens.Stored())
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	st, auth, tokens := setup("good")
	require.NoError(t, st.Restore(context.Background()))
	calls := auth.meCalls

	st.Logout(context.Background())
	assert.Equal(t, Unauthenticated, st.State())
	assert.Empty(t, tokens.Stored())
	assert.Empty(t, st.Session().Token())
	assert.Equal(t, calls, auth.meCalls)

	st.Logout(context.Background())
	assert.Equal(t, Unauthenticated, st.State())
}

func TestClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{"id": "u9"},
		"exp":  exp.Unix(),
	}).SignedString([]byte("unknown-to-client"))
	require.NoError(t, err)

	c, ok := ParseClaims(tok)
	require.True(t, ok)
	assert.Equal(t, "u9", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(exp.Add(-time.Hour)))
	assert.True(t, c.Expired(exp.Add(time.Hour)))

	_, ok = ParseClaims("opaque-token")
	assert.False(t, ok)
	_, ok = New().Claims()
	assert.False(t, ok)
}
