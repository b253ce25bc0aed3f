package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from its token without the signing
// key. It is for display only and never used to decide validity.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token claims an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes a JWT payload without verifying it. ok is false for
// opaque tokens.
func ParseClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}
	var c Claims
	c.Subject, _ = mc.GetSubject()
	if c.Subject == "" {
		c.Subject = customSubject(mc)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, true
}

// customSubject finds a user id in the non-standard places services use:
// a top-level userId/user_id/id or a nested {"user": {"id": ...}}.
func customSubject(mc jwt.MapClaims) string {
	for _, key := range []string{"userId", "user_id", "id"} {
		if v, ok := mc[key].(string); ok && v != "" {
			return v
		}
	}
	if u, ok := mc["user"].(map[string]any); ok {
		if v, ok := u["id"].(string); ok {
			return v
		}
	}
	return ""
}

// Claims inspects the current session token.
func (s *Session) Claims() (Claims, bool) {
	return ParseClaims(s.Token())
}
