// Package session owns the signed-in identity: the bearer token, the user
// profile and how both survive between runs.
package session

import (
	"sync"

	"spendwise/internal/core"
)

// State of the session lifecycle.
type State int

const (
	Unknown State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session holds the current token and user. It is the api.TokenSource the
// gateway reads on every call; only Store writes it.
type Session struct {
	mu    sync.RWMutex
	token string
	user  core.User
	state State
}

func New() *Session {
	return &Session{}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) establish(token string, user core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.state = token, user, Authenticated
}

// probe installs a token without authenticating, so the restore call can
// present it.
func (s *Session) probe(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.state = token, core.User{}, Unknown
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user, s.state = "", core.User{}, Unauthenticated
}
