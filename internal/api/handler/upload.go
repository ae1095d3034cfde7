package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"nexthire/chat/internal/config"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const thumbPrefix = "thumb_"

type uploadResponse struct {
	URL          string `json:"url"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Upload handles POST /api/v1/chat/upload. Images additionally get a
// scaled-down thumbnail stored next to the original.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorJSON(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		errorJSON(c, http.StatusBadRequest, "file is required")
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.Log.Errorw("failed to create upload dir", "dir", h.UploadDir, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	stored := uuid.NewString() + ext
	dst := filepath.Join(h.UploadDir, stored)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		h.Log.Errorw("failed to save upload", "name", fh.Filename, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if t := mime.TypeByExtension(ext); t != "" {
			contentType = t
		}
	}
	resp := uploadResponse{
		URL:  h.publicPath(stored),
		Type: contentType,
		Name: filepath.Base(fh.Filename),
	}

	if strings.HasPrefix(contentType, "image/") && contentType != "image/gif" {
		if err := writeThumbnail(dst, filepath.Join(h.UploadDir, thumbPrefix+stored)); err != nil {
			// The original is still usable without a preview.
			h.Log.Warnw("thumbnail failed", "name", fh.Filename, "error", err)
		} else {
			resp.ThumbnailURL = h.publicPath(thumbPrefix + stored)
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) publicPath(name string) string {
	return strings.TrimRight(h.PublicURL, "/") + "/uploads/" + name
}

func writeThumbnail(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	thumb := imaging.Resize(img, config.ThumbnailWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, dst); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}
