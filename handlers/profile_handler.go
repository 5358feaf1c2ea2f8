package handlers

import (
	"net/http"

	"cvchat-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileHandler handles HTTP requests for profile metadata and the
// publication lifecycle
type ProfileHandler struct {
	profiles service.ProfileStore
	publish  *service.PublishService
	auth     *service.AuthService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles service.ProfileStore, publish *service.PublishService, auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		publish:  publish,
		auth:     auth,
	}
}

// requesterID resolves the optional session to a user ID pointer
func (h *ProfileHandler) requesterID(c *gin.Context) *uuid.UUID {
	if user := sessionUser(c, h.auth); user != nil {
		return &user.ID
	}
	return nil
}

// authorizeToken enforces profile access on the meta routes: owned profiles
// are accessible only by their owner, anonymous profiles by any bearer of
// the token. Responds 404/403 and returns false when access is denied.
func (h *ProfileHandler) authorizeToken(c *gin.Context, token string) bool {
	profile, err := h.profiles.GetByToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return false
	}

	if profile.UserID != nil {
		requester := h.requesterID(c)
		if requester == nil || *requester != *profile.UserID {
			respondError(c, http.StatusForbidden, "ACCESS_DENIED", "You do not have access to this profile")
			return false
		}
	}

	return true
}

// GetMeta handles GET /api/profiles/:token/meta. It serves only the
// lightweight meta projection; the full parsed document never leaves the
// server.
func (h *ProfileHandler) GetMeta(c *gin.Context) {
	token := c.Param("token")
	if !h.authorizeToken(c, token) {
		return
	}

	meta, err := h.profiles.GetMetaByToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":      meta.Token,
			"name":       meta.Name,
			"position":   meta.Position,
			"summary":    meta.Summary,
			"image_url":  meta.ImageURL,
			"updated_at": meta.UpdatedAt,
		},
	})
}

type updateSummaryRequest struct {
	Summary string `json:"summary"`
}

// UpdateSummary handles PUT /api/profiles/:token/meta. Last write wins; the
// edited summary supersedes the parsed one everywhere.
func (h *ProfileHandler) UpdateSummary(c *gin.Context) {
	token := c.Param("token")
	if !h.authorizeToken(c, token) {
		return
	}

	var req updateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "summary is required")
		return
	}

	if err := h.profiles.UpdateMetaSummary(c.Request.Context(), token, req.Summary); err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Claim handles POST /api/profiles/:token/claim
func (h *ProfileHandler) Claim(c *gin.Context) {
	user := requireUser(c, h.auth)
	if user == nil {
		return
	}

	token := c.Param("token")
	if err := h.auth.ClaimProfile(c.Request.Context(), token, user.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Publish handles POST /api/profiles/:token/publish
func (h *ProfileHandler) Publish(c *gin.Context) {
	token := c.Param("token")

	profile, err := h.publish.Publish(c.Request.Context(), token, h.requesterID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":        profile.Token,
			"published_at": profile.PublishedAt,
			"share_token":  profile.ShareToken,
		},
	})
}

// Unpublish handles POST /api/profiles/:token/unpublish
func (h *ProfileHandler) Unpublish(c *gin.Context) {
	token := c.Param("token")

	if _, err := h.publish.Unpublish(c.Request.Context(), token, h.requesterID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegenerateShare handles POST /api/profiles/:token/share/regenerate
func (h *ProfileHandler) RegenerateShare(c *gin.Context) {
	token := c.Param("token")

	shareToken, err := h.publish.RegenerateShareToken(c.Request.Context(), token, h.requesterID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"share_token": shareToken},
	})
}

// EnsureSlug handles POST /api/profiles/slug
func (h *ProfileHandler) EnsureSlug(c *gin.Context) {
	user := requireUser(c, h.auth)
	if user == nil {
		return
	}

	slug, err := h.auth.EnsureSlug(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"slug": slug},
	})
}
