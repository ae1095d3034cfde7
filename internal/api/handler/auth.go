package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nexthire/chat/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuer         = "nexthire-relay"
	participantKey = "participant"
)

var errInvalidToken = errors.New("invalid token")

// generateJWT signs an HS256 token carrying the participant's id, name and
// role.
func generateJWT(secret []byte, p models.Participant, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": p.ID,
		"name":    p.Name,
		"role":    string(p.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"iss":     issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// validateToken verifies the signature and expiry and returns the
// participant of the token.
func (h *Handler) validateToken(raw string) (models.Participant, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return h.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(h.Now))
	if err != nil {
		return models.Participant{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	id, _ := claims["user_id"].(string)
	name, _ := claims["name"].(string)
	rawRole, _ := claims["role"].(string)
	role, err := models.ParseRole(rawRole)
	if id == "" || err != nil {
		return models.Participant{}, errInvalidToken
	}
	return models.Participant{ID: id, Name: name, Role: role}, nil
}

// bearer extracts the token from the Authorization header, or from the token
// query parameter for clients that cannot set headers.
func bearer(c *gin.Context) string {
	if v, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return c.Query("token")
}

// AuthRequired rejects requests without a valid token.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			errorJSON(c, http.StatusUnauthorized, "Authorization token missing")
			return
		}
		p, err := h.validateToken(raw)
		if err != nil {
			errorJSON(c, http.StatusUnauthorized, "Invalid token or expired")
			return
		}
		c.Set(participantKey, p)
		c.Next()
	}
}

func participant(c *gin.Context) models.Participant {
	p, _ := c.Get(participantKey)
	out, _ := p.(models.Participant)
	return out
}

type tokenRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role" binding:"required"`
	Photo  string `json:"profilePhoto"`
}

// IssueToken mints a development token and records the participant's
// profile. A missing user id gets a fresh one.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "role is required")
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}
	p := models.Participant{ID: req.UserID, Name: req.Name, Role: role}

	profile := &models.Profile{ID: p.ID, Name: p.Name, Role: string(p.Role), Photo: req.Photo}
	if err := h.Store.SaveProfile(c.Request.Context(), profile); err != nil {
		h.Log.Errorw("failed to save profile", "user", p.ID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	token, err := generateJWT(h.Secret, p, h.Now(), h.TokenTTL)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to create token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": p.ID, "role": p.Role})
}
