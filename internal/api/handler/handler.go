// Package handler serves the HTTP and websocket endpoints of the
// development relay.
package handler

import (
	"net/http"
	"time"

	"nexthire/chat/internal/config"
	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/relay"
	"nexthire/chat/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the dependencies shared by the relay endpoints.
type Handler struct {
	Hub       *relay.Hub
	Store     storage.Storage
	Secret    []byte
	TokenTTL  time.Duration
	UploadDir string
	PublicURL string
	Log       *zap.SugaredLogger
	Now       func() time.Time
}

func NewHandler(hub *relay.Hub, store storage.Storage, cfg config.RelayConfig, ttl time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Hub:       hub,
		Store:     store,
		Secret:    []byte(cfg.JWTSecret),
		TokenTTL:  ttl,
		UploadDir: cfg.UploadDir,
		PublicURL: cfg.PublicURL,
		Log:       logging.OrNop(log),
		Now:       time.Now,
	}
}

// Register mounts the relay routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/auth/token", h.IssueToken)
	r.GET("/ws", h.ServeWebSocket)
	r.Static("/uploads", h.UploadDir)
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api/v1", h.AuthRequired())
	api.POST("/chat/upload", h.Upload)
	api.GET("/chat/applicants-for-recruiter/:recruiterId", h.Applicants)
	api.POST("/chat/group/create", h.CreateGroup)
	api.GET("/chat/:roomId", h.History)
	api.POST("/chat/:roomId", h.PostMessage)
	api.POST("/interviews/save", h.SaveInterview)
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
