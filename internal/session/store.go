package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"spendwise/internal/api"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Store drives the session lifecycle against the auth endpoints.
type Store struct {
	session *Session
	auth    api.Auth
	tokens  TokenStore
	logger  *log.Logger
}

// NewStore wires the session to auth, which must send session's token.
func NewStore(s *Session, auth api.Auth, tokens TokenStore, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		session: s,
		auth:    auth,
		tokens:  tokens,
		logger:  logger.WithComponent(log.ComponentSession),
	}
}

func (st *Store) Session() *Session { return st.session }

func (st *Store) State() State { return st.session.State() }

// Restore validates a persisted token with the server. Without a token no
// request is made. Any failure discards the token.
func (st *Store) Restore(ctx context.Context) error {
	tok, err := st.tokens.Load(ctx)
	if err != nil {
		st.logger.WarnContext(ctx, "Loading stored token failed", log.FieldOperation, log.OpRestore, log.FieldError, err)
		tok = ""
	}
	if tok == "" {
		st.session.clear()
		return nil
	}

	st.session.probe(tok)
	user, err := st.auth.CurrentUser(ctx)
	if err != nil {
		st.logger.InfoContext(ctx, "Stored session rejected", log.FieldOperation, log.OpRestore, log.FieldError, err)
		st.session.clear()
		if cerr := st.tokens.Clear(ctx); cerr != nil {
			st.logger.WarnContext(ctx, "Clearing stored token failed", log.FieldOperation, log.OpRestore, log.FieldError, cerr)
		}
		return nil
	}

	st.session.establish(tok, user)
	st.logger.DebugContext(ctx, "Session restored", log.FieldUserID, user.ID)
	return nil
}

// Login authenticates and persists the token. On failure the existing
// session is left as it was.
func (st *Store) Login(ctx context.Context, email, password string) (core.User, error) {
	res, err := st.auth.Login(ctx, api.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return core.User{}, authFailure("Login failed", err)
	}
	st.adopt(ctx, log.OpLogin, res)
	return res.User, nil
}

// Register creates an account and signs in. The server checks that the
// passwords match and that the email is free.
func (st *Store) Register(ctx context.Context, name, email, password, confirm string) (core.User, error) {
	res, err := st.auth.Register(ctx, api.RegisterRequest{
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return core.User{}, authFailure("Registration failed", err)
	}
	st.adopt(ctx, log.OpRegister, res)
	return res.User, nil
}

// Logout forgets the session locally. It never fails and never calls the
// server.
func (st *Store) Logout(ctx context.Context) {
	st.session.clear()
	if err := st.tokens.Clear(ctx); err != nil {
		st.logger.WarnContext(ctx, "Clearing stored token failed", log.FieldOperation, log.OpLogout, log.FieldError, err)
	}
}

func (st *Store) adopt(ctx context.Context, op string, res api.AuthResult) {
	st.session.establish(res.Token, res.User)
	if err := st.tokens.Save(ctx, res.Token); err != nil {
		st.logger.WarnContext(ctx, "Persisting token failed", log.FieldOperation, op, log.FieldError, err)
	}
	st.logger.DebugContext(ctx, "Signed in", log.FieldOperation, op, log.FieldUserID, res.User.ID)
}

// authFailure keeps the server's message when it sent one.
func authFailure(fallback string, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return err
	}
	if errors.As(err, &apiErr) && apiErr.Kind != api.KindNetwork {
		cp := *apiErr
		cp.Message = fallback
		return &cp
	}
	return fmt.Errorf("%s: %w", strings.ToLower(fallback), err)
}

// MemoryTokens is an in-process TokenStore.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
	// Loads counts Load calls.
	Loads int
}

func (m *MemoryTokens) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	return m.token, nil
}

func (m *MemoryTokens) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Stored returns the persisted token.
func (m *MemoryTokens) Stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
