package handlers

import (
	"io"
	"net/http"
	"strings"

	"cvchat-backend/service"
	"cvchat-backend/storage"

	"github.com/gin-gonic/gin"
)

// PublicHandler handles the unauthenticated public surface: share links,
// public slug pages and stored images
type PublicHandler struct {
	publish  *service.PublishService
	profiles service.ProfileStore
	users    service.UserStore
	images   storage.ImageStore
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(publish *service.PublishService, profiles service.ProfileStore, users service.UserStore, images storage.ImageStore) *PublicHandler {
	return &PublicHandler{
		publish:  publish,
		profiles: profiles,
		users:    users,
		images:   images,
	}
}

// SharedSnapshot handles GET /api/public/share/:shareToken. Every
// precondition miss is a plain 404; the response never distinguishes
// unknown, unpublished and share-disabled tokens.
func (h *PublicHandler) SharedSnapshot(c *gin.Context) {
	snapshot, err := h.publish.SharedSnapshot(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"meta": gin.H{
				"name":      snapshot.Meta.Name,
				"position":  snapshot.Meta.Position,
				"summary":   snapshot.Meta.Summary,
				"image_url": snapshot.Meta.ImageURL,
			},
			"document":         snapshot.Document,
			"certificates":     snapshot.Certificates,
			"additional_texts": snapshot.AdditionalTexts,
			"published_at":     snapshot.TakenAt,
		},
	})
}

// SlugMeta handles GET /api/public/profiles/:slug, serving the meta
// projection of the slug's most recent profile.
func (h *PublicHandler) SlugMeta(c *gin.Context) {
	slug := c.Param("slug")

	user, err := h.users.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	profile, err := h.profiles.GetLatestByUserID(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	meta, err := h.profiles.GetMetaByToken(c.Request.Context(), profile.Token)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"slug":       slug,
			"token":      meta.Token,
			"name":       meta.Name,
			"position":   meta.Position,
			"summary":    meta.Summary,
			"image_url":  meta.ImageURL,
			"updated_at": meta.UpdatedAt,
		},
	})
}

// Image handles GET /api/images/*path
func (h *PublicHandler) Image(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	reader, err := h.images.Download(c.Request.Context(), path)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to read image")
		return
	}

	c.Data(http.StatusOK, storage.ContentTypeForPath(path), data)
}
