package auth_test

import (
	"path/filepath"
	"testing"
	"time"

	"nexthire/chat/internal/auth"
	"nexthire/chat/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseSession(t *testing.T) {
	// Arrange
	now := time.Now()
	token := sign(t, jwt.MapClaims{
		"user_id": "cand1",
		"role":    "student",
		"name":    "Ann",
		"exp":     now.Add(time.Hour).Unix(),
	})

	// Act
	s, err := auth.ParseSession(token, now)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "cand1", s.UserID)
	assert.Equal(t, models.RoleCandidate, s.Role, "legacy role is canonicalized once")
	assert.Equal(t, "Ann", s.DisplayName())
	assert.Equal(t, token, s.Token)
}

func TestParseSession_Errors(t *testing.T) {
	now := time.Now()

	_, err := auth.ParseSession("not-a-jwt", now)
	assert.ErrorIs(t, err, auth.ErrMalformedToken)

	_, err = auth.ParseSession(sign(t, jwt.MapClaims{"role": "recruiter"}), now)
	assert.ErrorIs(t, err, auth.ErrMalformedToken)

	_, err = auth.ParseSession(sign(t, jwt.MapClaims{"user_id": "u", "role": "admin"}), now)
	assert.ErrorIs(t, err, models.ErrUnknownRole)

	_, err = auth.ParseSession(sign(t, jwt.MapClaims{"user_id": "u", "role": "recruiter", "exp": now.Add(-time.Minute).Unix()}), now)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	s, err := auth.NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.Token())

	require.NoError(t, s.Save("tok"))
	reopened, err := auth.NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", reopened.Token())

	require.NoError(t, reopened.Clear())
	assert.Empty(t, reopened.Token())
	require.NoError(t, reopened.Clear(), "clearing twice is fine")

	again, err := auth.NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, again.Token())
}

func TestSessionCurrent(t *testing.T) {
	s := &auth.Session{UserID: "rec1", Role: models.RoleRecruiter}
	p := s.Current()

	assert.Equal(t, models.Participant{ID: "rec1", Name: "rec1", Role: models.RoleRecruiter}, p)
}
