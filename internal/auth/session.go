// Package auth holds the signed-in participant: the stored bearer token and
// the identity read from its claims.
package auth

import (
	"errors"
	"fmt"
	"time"

	"nexthire/chat/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
)

// Session is the identity of the signed-in participant. The role is already
// canonical; nothing downstream re-interprets it.
type Session struct {
	Token     string
	UserID    string
	Name      string
	Role      models.Role
	ExpiresAt time.Time
}

// ParseSession reads the identity claims of token. The signature is not
// verified here: the backend does that on every request.
func ParseSession(token string, now time.Time) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	s := &Session{Token: token}
	s.UserID = firstString(claims, "user_id", "userId", "id", "sub")
	if s.UserID == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrMalformedToken)
	}
	s.Name = firstString(claims, "name", "fullname")

	role, err := models.ParseRole(firstString(claims, "role"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	s.Role = role

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		s.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return nil, ErrExpiredToken
		}
	}
	return s, nil
}

// DisplayName returns the name claim or the user id.
func (s *Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.UserID
}

// Current returns the signed-in participant.
func (s *Session) Current() models.Participant {
	return models.Participant{ID: s.UserID, Name: s.DisplayName(), Role: s.Role}
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
