// Package memory is an in-process implementation of the expense service.
// It mirrors the remote API closely enough for tests and offline demos:
// per-user data, bearer tokens, populated split references and the same
// error taxonomy. With a snapshot path the data survives restarts.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/api"
	"spendwise/internal/core"
)

const tokenTTL = 7 * 24 * time.Hour

type (
	account struct {
		User         core.User `json:"user"`
		PasswordHash string    `json:"passwordHash"`
	}

	ownedSplit struct {
		Owner string     `json:"owner"`
		Split core.Split `json:"split"`
	}

	// ownedExpense keeps only the split id; names are resolved on read.
	ownedExpense struct {
		Owner   string       `json:"owner"`
		SplitID string       `json:"splitId,omitempty"`
		Expense core.Expense `json:"expense"`
	}

	ownedIncome struct {
		Owner  string      `json:"owner"`
		Income core.Income `json:"income"`
	}

	snapshot struct {
		Secret   string         `json:"secret"`
		Accounts []account      `json:"accounts"`
		Splits   []ownedSplit   `json:"splits"`
		Expenses []ownedExpense `json:"expenses"`
		Income   []ownedIncome  `json:"income"`
	}
)

// Store holds all data. Use Client to obtain a gateway bound to a token.
type Store struct {
	mu   sync.Mutex
	data snapshot
	path string
	cost int
	now  func() time.Time
}

type Option func(*Store)

// WithSnapshot persists the store as JSON at path after every change.
func WithSnapshot(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// WithClock sets the time source used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store, loading the snapshot when one exists.
func New(opts ...Option) (*Store, error) {
	s := &Store{cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	if s.data.Secret == "" {
		s.data.Secret = uuid.NewString()
	}
	return s, nil
}

// Client returns a gateway whose requests authenticate with tokens.
func (s *Store) Client(tokens api.TokenSource) *Client {
	if tokens == nil {
		tokens = api.StaticToken("")
	}
	return &Client{store: s, tokens: tokens}
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return nil
}

// persist must be called with mu held.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) issue(u core.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.data.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tok, nil
}

// authenticate resolves the bearer token to a user id. Must hold mu.
func (s *Store) authenticate(op, token string) (string, error) {
	if token == "" {
		return "", &api.Error{Kind: api.KindAuth, Op: op, StatusCode: http.StatusUnauthorized, Message: "No token, authorization denied"}
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.data.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", &api.Error{Kind: api.KindAuth, Op: op, StatusCode: http.StatusUnauthorized, Message: "Token is not valid", Err: err}
	}
	if _, ok := s.account(claims.Subject); !ok {
		return "", &api.Error{Kind: api.KindAuth, Op: op, StatusCode: http.StatusUnauthorized, Message: "Token is not valid"}
	}
	return claims.Subject, nil
}

func (s *Store) account(userID string) (account, bool) {
	for _, a := range s.data.Accounts {
		if a.User.ID == userID {
			return a, true
		}
	}
	return account{}, false
}

func (s *Store) split(owner, id string) (core.Split, bool) {
	for _, o := range s.data.Splits {
		if o.Owner == owner && o.Split.ID == id {
			return o.Split, true
		}
	}
	return core.Split{}, false
}

// populate fills the split reference the way the service does: a split that
// no longer exists becomes null.
func (s *Store) populate(oe ownedExpense) core.Expense {
	e := oe.Expense
	e.Split = nil
	if oe.SplitID != "" {
		if sp, ok := s.split(oe.Owner, oe.SplitID); ok {
			ref := core.SplitRef(sp)
			e.Split = &ref
		}
	}
	return e
}

func validationError(op, msg string) error {
	return &api.Error{Kind: api.KindValidation, Op: op, StatusCode: http.StatusBadRequest, Message: msg}
}

func notFound(op, what string) error {
	return &api.Error{Kind: api.KindServer, Op: op, StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func internalError(op string, err error) error {
	return &api.Error{Kind: api.KindServer, Op: op, StatusCode: http.StatusInternalServerError, Message: "Server error", Err: err}
}
